package config

import "testing"

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	t.Setenv("MOVIERAZZI_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("MOVIERAZZI_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("MOVIERAZZI_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBDSN == "" {
		t.Fatal("expected DB DSN to be set")
	}
	if cfg.JWTSigningKey != "supersecret" {
		t.Fatalf("unexpected jwt signing key: %q", cfg.JWTSigningKey)
	}
}

func TestLoadRejectsMissingDSN(t *testing.T) {
	t.Setenv("MOVIERAZZI_DB_DSN", "")
	t.Setenv("MOVIERAZZI_JWT_SIGNING_KEY", "supersecret")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail without a DSN")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("MOVIERAZZI_DB_DSN", "file:test.db")
	t.Setenv("MOVIERAZZI_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("MOVIERAZZI_DB_BACKEND", "oracle")

	if _, err := Load(); err == nil {
		t.Fatal("expected config load to fail for an unsupported backend")
	}
}

func TestLoadProductionRequiresTMDBKey(t *testing.T) {
	t.Setenv("MOVIERAZZI_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("MOVIERAZZI_JWT_SIGNING_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("MOVIERAZZI_ENV", "production")
	t.Setenv("MOVIERAZZI_TMDB_API_KEY", "")
	t.Setenv("TMDB_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected production config load to fail without a TMDB key")
	}

	t.Setenv("MOVIERAZZI_TMDB_API_KEY", "tmdb-key")
	if _, err := Load(); err != nil {
		t.Fatalf("expected production config load with TMDB key to succeed: %v", err)
	}
}
