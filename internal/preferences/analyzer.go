/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package preferences extracts viewing preferences from free-form text.
package preferences

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Profile is the structured result of analyzing a preference sentence.
type Profile struct {
	Genres        []string `json:"genres"`
	People        []string `json:"people"`
	DurationLimit int      `json:"duration_limit_minutes,omitempty"`
}

// genreKeywords maps trigger words found in user text to canonical genre
// names understood by the retrieval layer.
var genreKeywords = map[string]string{
	"action":      "Action",
	"adventure":   "Adventure",
	"animation":   "Animation",
	"animated":    "Animation",
	"comedy":      "Comedy",
	"comedies":    "Comedy",
	"funny":       "Comedy",
	"crime":       "Crime",
	"documentary": "Documentary",
	"drama":       "Drama",
	"dramas":      "Drama",
	"family":      "Family",
	"fantasy":     "Fantasy",
	"history":     "History",
	"historical":  "History",
	"horror":      "Horror",
	"scary":       "Horror",
	"music":       "Music",
	"musical":     "Music",
	"mystery":     "Mystery",
	"romance":     "Romance",
	"romantic":    "Romance",
	"sci-fi":      "Science Fiction",
	"scifi":       "Science Fiction",
	"science":     "Science Fiction",
	"thriller":    "Thriller",
	"thrillers":   "Thriller",
	"war":         "War",
	"western":     "Western",
	"westerns":    "Western",
}

// stopWords are capitalized words that should never start or continue a
// person name match.
var stopWords = map[string]struct{}{
	"i": {}, "monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {}, "movies": {}, "movie": {},
	"films": {}, "film": {}, "something": {}, "anything": {}, "hollywood": {},
}

var (
	wordRe          = regexp.MustCompile(`[A-Za-z][A-Za-z'\-]*`)
	capitalizedRe   = regexp.MustCompile(`^[A-Z][a-z'\-]+$`)
	durationLimitRe = regexp.MustCompile(`(?i)(?:under|less than|shorter than|max(?:imum)?(?:\s+of)?)\s+(\d+)\s*(h|hours?|hrs?|m|mins?|minutes?)\b`)
)

// Analyzer turns raw preference text into a Profile.
type Analyzer struct {
	logger zerolog.Logger
}

// NewAnalyzer creates a preference analyzer.
func NewAnalyzer(logger zerolog.Logger) *Analyzer {
	return &Analyzer{logger: logger.With().Str("component", "preferences").Logger()}
}

// Analyze extracts genres, people, and an optional duration limit from text.
// Genres come from a keyword table, people from runs of consecutive
// capitalized words that pass the stop-word filter.
func (a *Analyzer) Analyze(text string) Profile {
	profile := Profile{
		Genres: extractGenres(text),
		People: extractPeople(text),
	}

	if m := durationLimitRe.FindStringSubmatch(text); m != nil {
		if limit, err := strconv.Atoi(m[1]); err == nil {
			if strings.HasPrefix(strings.ToLower(m[2]), "h") {
				limit *= 60
			}
			profile.DurationLimit = limit
		}
	}

	a.logger.Debug().
		Strs("genres", profile.Genres).
		Strs("people", profile.People).
		Int("duration_limit", profile.DurationLimit).
		Msg("analyzed preference text")

	return profile
}

func extractGenres(text string) []string {
	var genres []string
	seen := make(map[string]struct{})
	for _, word := range wordRe.FindAllString(strings.ToLower(text), -1) {
		genre, ok := genreKeywords[word]
		if !ok {
			continue
		}
		if _, dup := seen[genre]; dup {
			continue
		}
		seen[genre] = struct{}{}
		genres = append(genres, genre)
	}
	return genres
}

// extractPeople finds runs of two or more consecutive capitalized words.
// Single capitalized words are too noisy to treat as names.
func extractPeople(text string) []string {
	words := wordRe.FindAllString(text, -1)

	var people []string
	seen := make(map[string]struct{})

	var run []string
	flush := func() {
		if len(run) >= 2 {
			name := strings.Join(run, " ")
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				people = append(people, name)
			}
		}
		run = nil
	}

	for _, w := range words {
		if capitalizedRe.MatchString(w) && !isStopWord(w) {
			run = append(run, w)
			continue
		}
		flush()
	}
	flush()

	return people
}

func isStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}
