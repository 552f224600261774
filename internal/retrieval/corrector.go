/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package retrieval

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// minCoverage is the minimum percentage of the candidate name the typed
// pattern must cover before a fuzzy match is trusted.
const minCoverage = 60

// knownPeople is a curated index of frequently requested actors and
// directors. Names not in the index pass through unchanged; the search
// endpoint handles the rest.
var knownPeople = []string{
	"Al Pacino",
	"Angelina Jolie",
	"Anthony Hopkins",
	"Brad Pitt",
	"Cate Blanchett",
	"Christian Bale",
	"Christopher Nolan",
	"Denzel Washington",
	"Emma Stone",
	"George Clooney",
	"Harrison Ford",
	"Jennifer Lawrence",
	"Joaquin Phoenix",
	"Johnny Depp",
	"Julia Roberts",
	"Kate Winslet",
	"Keanu Reeves",
	"Leonardo DiCaprio",
	"Margot Robbie",
	"Martin Scorsese",
	"Matt Damon",
	"Meryl Streep",
	"Morgan Freeman",
	"Natalie Portman",
	"Nicole Kidman",
	"Quentin Tarantino",
	"Robert De Niro",
	"Robert Downey Jr",
	"Samuel L Jackson",
	"Sandra Bullock",
	"Scarlett Johansson",
	"Steven Spielberg",
	"Tom Cruise",
	"Tom Hanks",
	"Will Smith",
}

// Corrector fixes misspelled person names against the known-people index.
type Corrector struct {
	names []string
	exact map[string]string
}

// NewCorrector builds a corrector over the default index.
func NewCorrector() *Corrector {
	return NewCorrectorWithNames(knownPeople)
}

// NewCorrectorWithNames builds a corrector over a custom index.
func NewCorrectorWithNames(names []string) *Corrector {
	exact := make(map[string]string, len(names))
	for _, n := range names {
		exact[strings.ToLower(n)] = n
	}
	return &Corrector{names: names, exact: exact}
}

// Correct returns the canonical spelling for name when the index contains a
// confident match, otherwise the input unchanged.
func (c *Corrector) Correct(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return name
	}

	if canonical, ok := c.exact[strings.ToLower(trimmed)]; ok {
		return canonical
	}

	matches := fuzzy.Find(trimmed, c.names)
	if len(matches) == 0 {
		return name
	}

	best := matches[0]
	if len(trimmed)*100/len(best.Str) < minCoverage {
		return name
	}

	return best.Str
}
