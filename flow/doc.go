// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package flow routes a returning participant through the photo exchange.

A participant is always in exactly one stage:

	create_submission → create_responses → view_submissions

The stage is never stored. It is recomputed from the latest submission
snapshot every time one is fetched:

	stage := flow.Classify(submissions, userID, finishedResponses)

# Ordering

Submissions are shuffled once, on the first snapshot, and afterwards keep
the order the participant has already seen. New submissions go to the end:

	shown = flow.Order(snapshot, nil, rng)   // first load
	shown = flow.Order(snapshot, shown, rng) // every refresh after

# Preloading

Preloader advances a cursor over the displayed list. One media preload is
outstanding at first; each completion lets the next one start.

# Controller

Controller owns a flow's lifecycle:

  - Start: fetch identity (failure exits the flow), fetch and order the
    first snapshot, classify
  - SubmissionCreated, ResponsesFinished, Reevaluate: refetch, reorder,
    reclassify
  - SetBusy: a screen's own loading message
  - PreloadDone: advance the preload cursor
  - Screen: the screen to render, with its props

Refreshes are numbered; a result that is not from the newest refresh is
dropped. Submission fetches are retried with exponential backoff before
the flow shows its error screen.

Registry holds the controllers of live flows by id.
*/
package flow
