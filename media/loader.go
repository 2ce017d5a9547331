// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/photo-swap/models"
)

var ErrNoURL = errors.New("submission has no photo url")

// HTTPLoader warms photo URLs by downloading them, so the CDN or proxy in
// front of them has the bytes cached before the participant scrolls there.
type HTTPLoader struct {
	client  *http.Client
	maxSize int64
}

func NewHTTPLoader(client *http.Client, maxSize int64) *HTTPLoader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPLoader{client: client, maxSize: maxSize}
}

// Load fetches the photo and discards the body. Reads stop after maxSize
// bytes when maxSize is positive.
func (l *HTTPLoader) Load(ctx context.Context, req models.PreloadRequest) error {
	if req.PhotoURL == "" {
		return ErrNoURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.PhotoURL, nil)
	if err != nil {
		return fmt.Errorf("build preload request: %w", err)
	}

	start := time.Now()
	resp, err := l.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("preload %s: %w", req.PhotoURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("preload %s: unexpected status %d", req.PhotoURL, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if l.maxSize > 0 {
		body = io.LimitReader(resp.Body, l.maxSize)
	}
	n, err := io.Copy(io.Discard, body)
	if err != nil {
		return fmt.Errorf("preload %s: %w", req.PhotoURL, err)
	}

	slog.Debug("media preloaded",
		"submission_id", req.SubmissionID,
		"bytes", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
