/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package tmdb is a minimal client for The Movie Database API v3,
// covering the endpoints the retrieval layer needs.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/movierazzi/internal/telemetry"
)

// DefaultBaseURL is the production TMDB API endpoint.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// GenreIDs maps canonical genre names to TMDB genre identifiers.
var GenreIDs = map[string]int{
	"Action":          28,
	"Adventure":       12,
	"Animation":       16,
	"Comedy":          35,
	"Crime":           80,
	"Documentary":     99,
	"Drama":           18,
	"Family":          10751,
	"Fantasy":         14,
	"History":         36,
	"Horror":          27,
	"Music":           10402,
	"Mystery":         9648,
	"Romance":         10749,
	"Science Fiction": 878,
	"Thriller":        53,
	"War":             10752,
	"Western":         37,
}

// Client is a TMDB API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("component", "tmdb").Logger(),
	}, nil
}

// doRequest performs an authenticated GET request against the API.
func (c *Client) doRequest(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)

	reqURL := c.baseURL + endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.TMDBRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("do request: %w", err)
	}

	outcome := "success"
	if resp.StatusCode != http.StatusOK {
		outcome = "error"
	}
	telemetry.TMDBRequestsTotal.WithLabelValues(endpoint, outcome).Inc()

	return resp, nil
}

// decodeResponse decodes a JSON response body.
func decodeResponse[T any](resp *http.Response) (T, error) {
	var result T
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return result, fmt.Errorf("TMDB error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return result, fmt.Errorf("decode response: %w", err)
	}

	return result, nil
}

// SearchPerson searches for a person by name and returns the top match,
// or nil if no one matched.
func (c *Client) SearchPerson(ctx context.Context, name string) (*Person, error) {
	q := url.Values{}
	q.Set("query", name)

	resp, err := c.doRequest(ctx, "/search/person", q)
	if err != nil {
		return nil, err
	}

	page, err := decodeResponse[personPage](resp)
	if err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, nil
	}

	return &page.Results[0], nil
}

// PersonMovieCredits returns the movie cast credits for a person.
func (c *Client) PersonMovieCredits(ctx context.Context, personID int64) ([]Credit, error) {
	resp, err := c.doRequest(ctx, fmt.Sprintf("/person/%d/movie_credits", personID), nil)
	if err != nil {
		return nil, err
	}

	credits, err := decodeResponse[creditsResponse](resp)
	if err != nil {
		return nil, err
	}

	return credits.Cast, nil
}

// DiscoverByGenres returns movies matching a set of TMDB genre ids,
// sorted by popularity.
func (c *Client) DiscoverByGenres(ctx context.Context, genreIDs []int) ([]Movie, error) {
	ids := make([]string, len(genreIDs))
	for i, id := range genreIDs {
		ids[i] = strconv.Itoa(id)
	}

	q := url.Values{}
	q.Set("with_genres", strings.Join(ids, ","))
	q.Set("sort_by", "popularity.desc")

	resp, err := c.doRequest(ctx, "/discover/movie", q)
	if err != nil {
		return nil, err
	}

	page, err := decodeResponse[moviePage](resp)
	if err != nil {
		return nil, err
	}

	return page.Results, nil
}

// Popular returns the current popular movies.
func (c *Client) Popular(ctx context.Context) ([]Movie, error) {
	resp, err := c.doRequest(ctx, "/movie/popular", nil)
	if err != nil {
		return nil, err
	}

	page, err := decodeResponse[moviePage](resp)
	if err != nil {
		return nil, err
	}

	return page.Results, nil
}

// MovieDetails returns full details for one movie, including runtime.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*MovieDetail, error) {
	resp, err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", movieID), nil)
	if err != nil {
		return nil, err
	}

	detail, err := decodeResponse[MovieDetail](resp)
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

// Person is a TMDB person search result.
type Person struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Popularity float64 `json:"popularity"`
}

// Credit is a cast entry from a person's movie credits.
type Credit struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Character   string  `json:"character"`
	Order       int     `json:"order"`
	GenreIDs    []int   `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	ReleaseDate string  `json:"release_date"`
}

// Movie is a TMDB list/discover result entry.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	GenreIDs    []int   `json:"genre_ids"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	ReleaseDate string  `json:"release_date"`
}

// MovieDetail is the response of the movie details endpoint.
type MovieDetail struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	Genres      []Genre `json:"genres"`
}

// Genre is a TMDB genre object.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type personPage struct {
	Page    int      `json:"page"`
	Results []Person `json:"results"`
}

type moviePage struct {
	Page    int     `json:"page"`
	Results []Movie `json:"results"`
}

type creditsResponse struct {
	ID   int64    `json:"id"`
	Cast []Credit `json:"cast"`
}
