// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flow

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/photo-swap/models"
)

func subs(ids ...string) []models.Submission {
	out := make([]models.Submission, len(ids))
	for i, id := range ids {
		out[i] = models.Submission{ID: id, UserID: "author-" + id, PhotoURL: "https://img.test/" + id + ".jpg", Responses: []models.Response{}}
	}
	return out
}

func TestOrder_StableAgainstPrevious(t *testing.T) {
	previous := subs("A", "B", "C")
	current := subs("C", "B", "A", "D")

	got := Order(current, previous, rand.New(rand.NewPCG(1, 2)))

	assert.Equal(t, []string{"A", "B", "C", "D"}, SubmissionIDs(got))
}

func TestOrder_NewSubmissionsKeepFetchOrder(t *testing.T) {
	previous := subs("B", "A")
	current := subs("E", "A", "D", "B", "F")

	got := Order(current, previous, nil)

	assert.Equal(t, []string{"B", "A", "E", "D", "F"}, SubmissionIDs(got))
}

func TestOrder_RemovedSubmissionsDropOut(t *testing.T) {
	got := Order(subs("C", "A"), subs("A", "B", "C"), nil)
	assert.Equal(t, []string{"A", "C"}, SubmissionIDs(got))
}

func TestOrder_EmptyPreviousKeepsFetchOrder(t *testing.T) {
	got := Order(subs("Z", "Y", "X"), []models.Submission{}, nil)
	assert.Equal(t, []string{"Z", "Y", "X"}, SubmissionIDs(got))
}

func TestOrder_FirstLoadIsPermutation(t *testing.T) {
	current := subs("A", "B", "C", "D", "E", "F", "G", "H")
	rng := rand.New(rand.NewPCG(42, 7))

	for i := 0; i < 50; i++ {
		got := Order(current, nil, rng)
		require.Len(t, got, len(current))
		assert.ElementsMatch(t, SubmissionIDs(current), SubmissionIDs(got))
	}
}

func TestOrder_FirstLoadShuffles(t *testing.T) {
	current := subs("A", "B", "C", "D", "E", "F", "G", "H")
	rng := rand.New(rand.NewPCG(3, 4))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ids := SubmissionIDs(Order(current, nil, rng))
		key := ""
		for _, id := range ids {
			key += id
		}
		seen[key] = true
	}
	assert.Greater(t, len(seen), 1, "20 shuffles of 8 items should not all agree")
}

func TestOrder_DoesNotMutateInputs(t *testing.T) {
	current := subs("C", "B", "A")
	previous := subs("A", "B", "C")

	Order(current, previous, nil)
	Order(current, nil, rand.New(rand.NewPCG(9, 9)))

	assert.Equal(t, []string{"C", "B", "A"}, SubmissionIDs(current))
	assert.Equal(t, []string{"A", "B", "C"}, SubmissionIDs(previous))
}

func TestOrder_EmptyInputs(t *testing.T) {
	got := Order(nil, nil, rand.New(rand.NewPCG(1, 1)))
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Order([]models.Submission{}, subs("A"), nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}
