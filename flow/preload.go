// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package flow

import (
	"context"

	"github.com/danielhkuo/photo-swap/models"
)

// MediaLoader eagerly loads one submission's media. Load blocks until the
// media is fetched or ctx ends.
type MediaLoader interface {
	Load(ctx context.Context, req models.PreloadRequest) error
}

// Preloader walks a cursor over the ordered submission list so that media
// is preloaded one item at a time. The first cursor items have a request
// outstanding; each completion advances the cursor by one.
//
// Preloader is not safe for concurrent use; Controller guards it.
type Preloader struct {
	cursor    int
	issued    map[string]bool
	completed map[string]bool
}

func NewPreloader() *Preloader {
	return &Preloader{
		cursor:    1,
		issued:    make(map[string]bool),
		completed: make(map[string]bool),
	}
}

// Cursor returns how many leading items may have a preload outstanding.
func (p *Preloader) Cursor() int {
	return p.cursor
}

// Outstanding lists the preloads within the cursor window that have not
// completed. Items past the end of list are ignored.
func (p *Preloader) Outstanding(list []models.Submission) []models.PreloadRequest {
	reqs := []models.PreloadRequest{}
	for _, s := range window(list, p.cursor) {
		if p.completed[s.ID] {
			continue
		}
		reqs = append(reqs, requestFor(s))
	}
	return reqs
}

// Next returns the outstanding preloads that have not been handed out yet
// and marks them issued, so repeated calls on an unchanged list return
// nothing new.
func (p *Preloader) Next(list []models.Submission) []models.PreloadRequest {
	var reqs []models.PreloadRequest
	for _, s := range window(list, p.cursor) {
		if p.issued[s.ID] || p.completed[s.ID] {
			continue
		}
		p.issued[s.ID] = true
		reqs = append(reqs, requestFor(s))
	}
	return reqs
}

// Complete records that the preload for submissionID finished and
// advances the cursor. Signals for unknown, never requested or already
// completed submissions are ignored and report false.
func (p *Preloader) Complete(list []models.Submission, submissionID string) bool {
	if p.completed[submissionID] {
		return false
	}
	inWindow := false
	for _, s := range window(list, p.cursor) {
		if s.ID == submissionID {
			inWindow = true
			break
		}
	}
	if !inWindow && !p.issued[submissionID] {
		return false
	}
	p.completed[submissionID] = true
	p.cursor++
	return true
}

func window(list []models.Submission, cursor int) []models.Submission {
	if cursor > len(list) {
		cursor = len(list)
	}
	return list[:cursor]
}

func requestFor(s models.Submission) models.PreloadRequest {
	return models.PreloadRequest{SubmissionID: s.ID, PhotoURL: s.PhotoURL}
}
