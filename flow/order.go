// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flow

import (
	"sort"

	"github.com/danielhkuo/photo-swap/models"
)

// Rand is the randomness Order needs. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Order arranges a freshly fetched snapshot for display.
//
// With no previous ordering (previous == nil) the result is a uniformly
// random permutation of current. Otherwise current is sorted by each
// submission's position in previous; submissions missing from previous
// rank after all known ones and keep their fetch order. The inputs are
// never modified.
func Order(current, previous []models.Submission, rng Rand) []models.Submission {
	out := make([]models.Submission, len(current))
	copy(out, current)

	if previous == nil {
		shuffle(out, rng)
		return out
	}

	rank := make(map[string]int, len(previous))
	for i, s := range previous {
		if _, seen := rank[s.ID]; !seen {
			rank[s.ID] = i
		}
	}
	rankOf := func(id string) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return len(previous)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return rankOf(out[i].ID) < rankOf(out[j].ID)
	})
	return out
}

// shuffle is a Fisher-Yates pass.
func shuffle(s []models.Submission, rng Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// SubmissionIDs returns the ids of s in order.
func SubmissionIDs(s []models.Submission) []string {
	ids := make([]string, len(s))
	for i, sub := range s {
		ids[i] = sub.ID
	}
	return ids
}
