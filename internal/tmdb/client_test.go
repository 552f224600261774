/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "test-key", 5*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestSearchPerson(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/person" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("query"); got != "Tom Hanks" {
			t.Errorf("query = %q, want Tom Hanks", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":1,"results":[{"id":31,"name":"Tom Hanks","popularity":80.1},{"id":99,"name":"Tom Hanks Jr"}]}`))
	})

	person, err := client.SearchPerson(context.Background(), "Tom Hanks")
	if err != nil {
		t.Fatalf("SearchPerson: %v", err)
	}
	if person == nil {
		t.Fatal("SearchPerson returned nil person")
	}
	if person.ID != 31 || person.Name != "Tom Hanks" {
		t.Errorf("got %+v, want id 31 name Tom Hanks", person)
	}
}

func TestSearchPersonNoResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1,"results":[]}`))
	})

	person, err := client.SearchPerson(context.Background(), "Nobody")
	if err != nil {
		t.Fatalf("SearchPerson: %v", err)
	}
	if person != nil {
		t.Errorf("expected nil person, got %+v", person)
	}
}

func TestPersonMovieCredits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/person/31/movie_credits" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":31,"cast":[{"id":13,"title":"Forrest Gump","character":"Forrest","order":0,"genre_ids":[18,35],"vote_average":8.5}]}`))
	})

	credits, err := client.PersonMovieCredits(context.Background(), 31)
	if err != nil {
		t.Fatalf("PersonMovieCredits: %v", err)
	}
	if len(credits) != 1 {
		t.Fatalf("got %d credits, want 1", len(credits))
	}
	if credits[0].Title != "Forrest Gump" || credits[0].Order != 0 {
		t.Errorf("unexpected credit %+v", credits[0])
	}
}

func TestDiscoverByGenres(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("with_genres"); got != "27,53" {
			t.Errorf("with_genres = %q, want 27,53", got)
		}
		if got := r.URL.Query().Get("sort_by"); got != "popularity.desc" {
			t.Errorf("sort_by = %q", got)
		}
		w.Write([]byte(`{"page":1,"results":[{"id":1,"title":"Alien","genre_ids":[27,878]}]}`))
	})

	movies, err := client.DiscoverByGenres(context.Background(), []int{27, 53})
	if err != nil {
		t.Fatalf("DiscoverByGenres: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "Alien" {
		t.Errorf("unexpected movies %+v", movies)
	}
}

func TestMovieDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/13" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":13,"title":"Forrest Gump","runtime":142,"vote_average":8.5,"genres":[{"id":18,"name":"Drama"}]}`))
	})

	detail, err := client.MovieDetails(context.Background(), 13)
	if err != nil {
		t.Fatalf("MovieDetails: %v", err)
	}
	if detail.Runtime != 142 {
		t.Errorf("Runtime = %d, want 142", detail.Runtime)
	}
}

func TestErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
	})

	if _, err := client.Popular(context.Background()); err == nil {
		t.Error("expected error for non-200 status, got nil")
	}
}
