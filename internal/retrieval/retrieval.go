/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package retrieval turns a preference profile into a deduplicated,
// runtime-enriched list of movie candidates using the TMDB API.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/friendsincode/movierazzi/internal/preferences"
	"github.com/friendsincode/movierazzi/internal/schedule"
	"github.com/friendsincode/movierazzi/internal/tmdb"
)

// DefaultMaxCandidates caps the candidate list when no limit is configured.
const DefaultMaxCandidates = 20

// maxCreditOrder excludes deep-cast credits where the person barely appears.
const maxCreditOrder = 15

// lookupCache is the subset of the cache layer retrieval depends on.
type lookupCache interface {
	GetRuntime(ctx context.Context, movieID int64) (int, bool)
	SetRuntime(ctx context.Context, movieID int64, runtime int)
	GetPersonID(ctx context.Context, name string) (int64, bool)
	SetPersonID(ctx context.Context, name string, id int64)
}

// RetrievedMovie pairs a candidate with the reason it was selected, so
// callers can show users why each movie made the list.
type RetrievedMovie struct {
	schedule.MovieCandidate
	Reason string `json:"reason"`
}

// Candidates strips the reasons off a retrieved list for callers that only
// need the packing input.
func Candidates(retrieved []RetrievedMovie) []schedule.MovieCandidate {
	out := make([]schedule.MovieCandidate, len(retrieved))
	for i, r := range retrieved {
		out[i] = r.MovieCandidate
	}
	return out
}

// Service retrieves movie candidates from TMDB.
type Service struct {
	client        *tmdb.Client
	cache         lookupCache
	corrector     *Corrector
	logger        zerolog.Logger
	maxCandidates int
}

// NewService creates a retrieval service. cache may be nil, in which case
// every lookup goes to the API.
func NewService(client *tmdb.Client, cache lookupCache, maxCandidates int, logger zerolog.Logger) *Service {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &Service{
		client:        client,
		cache:         cache,
		corrector:     NewCorrector(),
		logger:        logger.With().Str("component", "retrieval").Logger(),
		maxCandidates: maxCandidates,
	}
}

// Retrieve fetches candidates for a profile. People take priority over
// genres; when both come up empty the popular list is the fallback so the
// planner always has something to schedule.
func (s *Service) Retrieve(ctx context.Context, profile preferences.Profile) ([]RetrievedMovie, error) {
	var candidates []RetrievedMovie
	seen := make(map[int64]struct{})

	add := func(c schedule.MovieCandidate, reason string) {
		if _, dup := seen[c.ID]; dup {
			return
		}
		seen[c.ID] = struct{}{}
		candidates = append(candidates, RetrievedMovie{MovieCandidate: c, Reason: reason})
	}

	wantedGenres := genreIDSet(profile.Genres)

	for _, name := range profile.People {
		corrected := s.corrector.Correct(name)
		if corrected != name {
			s.logger.Debug().Str("from", name).Str("to", corrected).Msg("corrected person name")
		}

		movies, err := s.byPerson(ctx, corrected, wantedGenres)
		if err != nil {
			s.logger.Warn().Err(err).Str("person", corrected).Msg("person lookup failed")
			continue
		}
		reason := personReason(corrected, profile.Genres)
		for _, m := range movies {
			add(m, reason)
		}
	}

	if len(candidates) == 0 && len(profile.Genres) > 0 {
		movies, err := s.byGenres(ctx, profile.Genres)
		if err != nil {
			return nil, err
		}
		reason := fmt.Sprintf("Matches your preference for %s movies.", strings.Join(profile.Genres, ", "))
		for _, m := range movies {
			add(m, reason)
		}
	}

	if len(candidates) == 0 {
		movies, err := s.client.Popular(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range movies {
			add(movieCandidate(m), "Popular fallback movie.")
		}
	}

	if len(candidates) > s.maxCandidates {
		candidates = candidates[:s.maxCandidates]
	}

	s.enrichRuntimes(ctx, candidates)

	s.logger.Debug().Int("count", len(candidates)).Msg("retrieved candidates")
	return candidates, nil
}

// byPerson resolves a person and returns their filtered cast credits. When
// the profile detected genres, credits outside those genres are dropped;
// an empty genre set keeps everything.
func (s *Service) byPerson(ctx context.Context, name string, wantedGenres map[int]struct{}) ([]schedule.MovieCandidate, error) {
	personID, found, err := s.resolvePerson(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	credits, err := s.client.PersonMovieCredits(ctx, personID)
	if err != nil {
		return nil, err
	}

	var movies []schedule.MovieCandidate
	for _, credit := range credits {
		if !creditCounts(credit) {
			continue
		}
		if !matchesGenres(credit.GenreIDs, wantedGenres) {
			continue
		}
		movies = append(movies, schedule.MovieCandidate{
			ID:     credit.ID,
			Title:  credit.Title,
			Genre:  genreName(credit.GenreIDs),
			Rating: credit.VoteAverage,
		})
	}
	return movies, nil
}

// resolvePerson looks up a person id, consulting the cache before the
// search endpoint. Names are cached lowercased so casing variants share an
// entry.
func (s *Service) resolvePerson(ctx context.Context, name string) (int64, bool, error) {
	key := strings.ToLower(name)
	if s.cache != nil {
		if id, ok := s.cache.GetPersonID(ctx, key); ok {
			return id, true, nil
		}
	}

	person, err := s.client.SearchPerson(ctx, name)
	if err != nil {
		return 0, false, err
	}
	if person == nil {
		return 0, false, nil
	}
	if s.cache != nil {
		s.cache.SetPersonID(ctx, key, person.ID)
	}
	return person.ID, true, nil
}

// creditCounts filters out credits that do not represent a real on-screen
// role: uncredited cameos, voice work, archive footage, and deep cast
// positions.
func creditCounts(c tmdb.Credit) bool {
	if c.Order >= maxCreditOrder {
		return false
	}
	character := strings.ToLower(c.Character)
	for _, marker := range []string{"uncredited", "voice", "archive"} {
		if strings.Contains(character, marker) {
			return false
		}
	}
	return true
}

// genreIDSet maps detected genre names to their TMDB ids; unknown names
// are ignored.
func genreIDSet(genres []string) map[int]struct{} {
	ids := make(map[int]struct{}, len(genres))
	for _, g := range genres {
		if id, ok := tmdb.GenreIDs[g]; ok {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// matchesGenres reports whether any of ids is wanted. An empty wanted set
// matches everything.
func matchesGenres(ids []int, wanted map[int]struct{}) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, id := range ids {
		if _, ok := wanted[id]; ok {
			return true
		}
	}
	return false
}

// personReason explains an actor-based pick the way users phrased it.
func personReason(person string, genres []string) string {
	interest := "movies"
	if len(genres) > 0 {
		interest = strings.Join(genres, ", ")
	}
	return fmt.Sprintf("Stars %s and matches your interest in %s.", person, interest)
}

func (s *Service) byGenres(ctx context.Context, genres []string) ([]schedule.MovieCandidate, error) {
	var ids []int
	for _, g := range genres {
		if id, ok := tmdb.GenreIDs[g]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	movies, err := s.client.DiscoverByGenres(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]schedule.MovieCandidate, 0, len(movies))
	for _, m := range movies {
		out = append(out, movieCandidate(m))
	}
	return out, nil
}

// enrichRuntimes fills in RuntimeMinutes for each candidate, consulting the
// cache before the details endpoint. Lookup failures leave the runtime at
// zero so the optimizer applies its default.
func (s *Service) enrichRuntimes(ctx context.Context, candidates []RetrievedMovie) {
	for i := range candidates {
		if candidates[i].RuntimeMinutes > 0 {
			continue
		}

		if s.cache != nil {
			if runtime, ok := s.cache.GetRuntime(ctx, candidates[i].ID); ok {
				candidates[i].RuntimeMinutes = runtime
				continue
			}
		}

		detail, err := s.client.MovieDetails(ctx, candidates[i].ID)
		if err != nil {
			s.logger.Debug().Err(err).Int64("movie_id", candidates[i].ID).Msg("runtime lookup failed")
			continue
		}
		if detail.Runtime <= 0 {
			continue
		}

		candidates[i].RuntimeMinutes = detail.Runtime
		if s.cache != nil {
			s.cache.SetRuntime(ctx, candidates[i].ID, detail.Runtime)
		}
	}
}

func movieCandidate(m tmdb.Movie) schedule.MovieCandidate {
	return schedule.MovieCandidate{
		ID:     m.ID,
		Title:  m.Title,
		Genre:  genreName(m.GenreIDs),
		Rating: m.VoteAverage,
	}
}

// genreName maps the first known genre id back to its canonical name.
func genreName(ids []int) string {
	for _, id := range ids {
		for name, gid := range tmdb.GenreIDs {
			if gid == id {
				return name
			}
		}
	}
	return ""
}
