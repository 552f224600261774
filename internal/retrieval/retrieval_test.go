/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package retrieval

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/movierazzi/internal/preferences"
	"github.com/friendsincode/movierazzi/internal/tmdb"
)

func newTMDBClient(baseURL string) (*tmdb.Client, error) {
	return tmdb.NewClient(baseURL, "test-key", 5*time.Second, zerolog.Nop())
}

// memCache is an in-memory stand-in for the redis cache.
type memCache struct {
	mu       sync.Mutex
	runtimes map[int64]int
	people   map[string]int64
	hits     int
}

func newMemCache() *memCache {
	return &memCache{
		runtimes: make(map[int64]int),
		people:   make(map[string]int64),
	}
}

func (m *memCache) GetRuntime(_ context.Context, movieID int64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.runtimes[movieID]
	if ok {
		m.hits++
	}
	return rt, ok
}

func (m *memCache) SetRuntime(_ context.Context, movieID int64, runtime int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runtimes[movieID] = runtime
}

func (m *memCache) GetPersonID(_ context.Context, name string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.people[name]
	return id, ok
}

func (m *memCache) SetPersonID(_ context.Context, name string, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people[name] = id
}

func newTestService(t *testing.T, handler http.Handler, cache lookupCache) *Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := newTMDBClient(srv.URL)
	if err != nil {
		t.Fatalf("tmdb client: %v", err)
	}
	return NewService(client, cache, 0, zerolog.Nop())
}

func tmdbMux(t *testing.T) *http.ServeMux {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/search/person", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "Tom Hanks" {
			w.Write([]byte(`{"results":[{"id":31,"name":"Tom Hanks"}]}`))
			return
		}
		w.Write([]byte(`{"results":[]}`))
	})
	mux.HandleFunc("/person/31/movie_credits", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":31,"cast":[
			{"id":13,"title":"Forrest Gump","character":"Forrest","order":0,"genre_ids":[18],"vote_average":8.5},
			{"id":862,"title":"Toy Story","character":"Woody (voice)","order":0,"genre_ids":[16],"vote_average":8.0},
			{"id":500,"title":"Background Movie","character":"Man","order":20,"genre_ids":[18],"vote_average":5.0},
			{"id":501,"title":"Cameo Movie","character":"Himself (uncredited)","order":3,"genre_ids":[35],"vote_average":6.0}
		]}`))
	})
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":77,"title":"Genre Pick","genre_ids":[27],"vote_average":7.0}]}`))
	})
	mux.HandleFunc("/movie/popular", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"id":88,"title":"Popular Pick","genre_ids":[28],"vote_average":7.5}]}`))
	})
	mux.HandleFunc("/movie/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":13,"title":"Forrest Gump","runtime":142}`))
	})
	return mux
}

func TestRetrieveByPersonFiltersCredits(t *testing.T) {
	svc := newTestService(t, tmdbMux(t), nil)

	got, err := svc.Retrieve(context.Background(), preferences.Profile{People: []string{"Tom Hanks"}})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1 (voice, uncredited, and deep-order credits filtered)", len(got))
	}
	if got[0].Title != "Forrest Gump" {
		t.Errorf("Title = %q, want Forrest Gump", got[0].Title)
	}
	if got[0].RuntimeMinutes != 142 {
		t.Errorf("RuntimeMinutes = %d, want 142 from details endpoint", got[0].RuntimeMinutes)
	}
	if got[0].Genre != "Drama" {
		t.Errorf("Genre = %q, want Drama", got[0].Genre)
	}
}

func TestRetrievePersonCreditsFilteredByGenre(t *testing.T) {
	svc := newTestService(t, tmdbMux(t), nil)

	// Drama credit kept when Drama was asked for.
	got, err := svc.Retrieve(context.Background(), preferences.Profile{
		People: []string{"Tom Hanks"},
		Genres: []string{"Drama"},
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Forrest Gump" {
		t.Fatalf("got %+v, want the Drama credit", got)
	}
	if got[0].Reason != "Stars Tom Hanks and matches your interest in Drama." {
		t.Errorf("reason = %q", got[0].Reason)
	}

	// Drama credit dropped when only Animation was asked for; the genre
	// path takes over.
	got, err = svc.Retrieve(context.Background(), preferences.Profile{
		People: []string{"Tom Hanks"},
		Genres: []string{"Animation"},
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	for _, m := range got {
		if m.Title == "Forrest Gump" {
			t.Errorf("Drama credit returned despite detected genre Animation")
		}
	}
	if len(got) != 1 || got[0].Title != "Genre Pick" {
		t.Errorf("got %+v, want genre fallback after credits filtered out", got)
	}
}

func TestRetrieveReasons(t *testing.T) {
	svc := newTestService(t, tmdbMux(t), nil)
	ctx := context.Background()

	person, err := svc.Retrieve(ctx, preferences.Profile{People: []string{"Tom Hanks"}})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if person[0].Reason != "Stars Tom Hanks and matches your interest in movies." {
		t.Errorf("person reason = %q", person[0].Reason)
	}

	genre, err := svc.Retrieve(ctx, preferences.Profile{Genres: []string{"Horror"}})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if genre[0].Reason != "Matches your preference for Horror movies." {
		t.Errorf("genre reason = %q", genre[0].Reason)
	}

	popular, err := svc.Retrieve(ctx, preferences.Profile{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if popular[0].Reason != "Popular fallback movie." {
		t.Errorf("popular reason = %q", popular[0].Reason)
	}
}

func TestRetrieveGenreFallback(t *testing.T) {
	svc := newTestService(t, tmdbMux(t), nil)

	got, err := svc.Retrieve(context.Background(), preferences.Profile{Genres: []string{"Horror"}})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Genre Pick" {
		t.Errorf("got %+v, want single Genre Pick", got)
	}
}

func TestRetrievePopularFallback(t *testing.T) {
	svc := newTestService(t, tmdbMux(t), nil)

	got, err := svc.Retrieve(context.Background(), preferences.Profile{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Popular Pick" {
		t.Errorf("got %+v, want single Popular Pick", got)
	}
}

func TestRetrieveUnknownPersonFallsThrough(t *testing.T) {
	svc := newTestService(t, tmdbMux(t), nil)

	got, err := svc.Retrieve(context.Background(), preferences.Profile{
		People: []string{"Zzyzx Nobody"},
		Genres: []string{"Horror"},
	})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Genre Pick" {
		t.Errorf("got %+v, want genre fallback when person lookup is empty", got)
	}
}

func TestRetrieveUsesRuntimeCache(t *testing.T) {
	cache := newMemCache()
	cache.SetRuntime(context.Background(), 13, 120)

	var detailCalls int
	mux := tmdbMux(t)
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/movie/13" {
			detailCalls++
		}
		mux.ServeHTTP(w, r)
	}), cache)

	got, err := svc.Retrieve(context.Background(), preferences.Profile{People: []string{"Tom Hanks"}})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if got[0].RuntimeMinutes != 120 {
		t.Errorf("RuntimeMinutes = %d, want 120 from cache", got[0].RuntimeMinutes)
	}
	if detailCalls != 0 {
		t.Errorf("details endpoint called %d times, want 0", detailCalls)
	}
}

func TestRetrieveUsesPersonCache(t *testing.T) {
	cache := newMemCache()

	var searchCalls int
	mux := tmdbMux(t)
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/person" {
			searchCalls++
		}
		mux.ServeHTTP(w, r)
	}), cache)

	profile := preferences.Profile{People: []string{"Tom Hanks"}}
	if _, err := svc.Retrieve(context.Background(), profile); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if searchCalls != 1 {
		t.Fatalf("search endpoint called %d times, want 1", searchCalls)
	}
	if _, ok := cache.GetPersonID(context.Background(), "tom hanks"); !ok {
		t.Fatal("person id not cached after lookup")
	}

	if _, err := svc.Retrieve(context.Background(), profile); err != nil {
		t.Fatalf("second Retrieve: %v", err)
	}
	if searchCalls != 1 {
		t.Errorf("search endpoint called %d times after cached lookup, want 1", searchCalls)
	}
}

func TestRetrieveMaxCandidatesCap(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/popular", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"id":1,"title":"A"},{"id":2,"title":"B"},{"id":3,"title":"C"}
		]}`))
	})
	mux.HandleFunc("/movie/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1,"runtime":100}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := newTMDBClient(srv.URL)
	if err != nil {
		t.Fatalf("tmdb client: %v", err)
	}
	svc := NewService(client, nil, 2, zerolog.Nop())

	got, err := svc.Retrieve(context.Background(), preferences.Profile{})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d candidates, want cap of 2", len(got))
	}
}

func TestCorrectorFixesMisspelling(t *testing.T) {
	c := NewCorrector()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "exact", in: "Tom Hanks", want: "Tom Hanks"},
		{name: "case insensitive", in: "tom hanks", want: "Tom Hanks"},
		{name: "missing letter", in: "Tom Hank", want: "Tom Hanks"},
		{name: "unknown passes through", in: "Zzyzx Nobody", want: "Zzyzx Nobody"},
		{name: "empty passes through", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Correct(tt.in); got != tt.want {
				t.Errorf("Correct(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
