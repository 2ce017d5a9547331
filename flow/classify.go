// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flow

import "github.com/danielhkuo/photo-swap/models"

// Classify decides which stage a participant belongs in. Rules are checked
// in order and the first match wins:
//
//  1. the user has no submission: StageCreateSubmission
//  2. someone else's submission still awaits the user's response and the
//     user has not finished responding this session: StageCreateResponses
//  3. otherwise: StageViewSubmissions
func Classify(submissions []models.Submission, userID string, finishedResponses bool) models.Stage {
	if _, ok := UserSubmission(submissions, userID); !ok {
		return models.StageCreateSubmission
	}
	if !finishedResponses && len(PendingResponses(submissions, userID)) > 0 {
		return models.StageCreateResponses
	}
	return models.StageViewSubmissions
}

// UserSubmission returns the first submission authored by userID.
func UserSubmission(submissions []models.Submission, userID string) (models.Submission, bool) {
	if userID == "" {
		return models.Submission{}, false
	}
	for _, s := range submissions {
		if s.UserID == userID {
			return s, true
		}
	}
	return models.Submission{}, false
}

// PendingResponses returns, in input order, the submissions authored by
// someone other than userID that userID has not responded to.
func PendingResponses(submissions []models.Submission, userID string) []models.Submission {
	pending := []models.Submission{}
	for _, s := range submissions {
		if s.UserID == userID {
			continue
		}
		if HasResponded(s, userID) {
			continue
		}
		pending = append(pending, s)
	}
	return pending
}

// HasResponded reports whether any response on s belongs to userID.
func HasResponded(s models.Submission, userID string) bool {
	for _, r := range s.Responses {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
