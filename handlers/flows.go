// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/photo-swap/auth"
	"github.com/danielhkuo/photo-swap/cliparse"
	"github.com/danielhkuo/photo-swap/db"
	"github.com/danielhkuo/photo-swap/flow"
	"github.com/danielhkuo/photo-swap/media"
	"github.com/danielhkuo/photo-swap/middleware"
	"github.com/danielhkuo/photo-swap/models"
)

// maxPreloadBytes caps how much of a photo the server reads when warming it
const maxPreloadBytes = 32 << 20

// NewFlowRegistry builds the in-memory flow registry from the server config
func NewFlowRegistry(store *db.Store, cfg cliparse.Config) *flow.Registry {
	opts := flow.Options{
		ExitURL:        cfg.ExitURL,
		FetchTimeout:   cfg.FetchTimeout,
		FetchRetries:   cfg.FetchRetries,
		PreloadTimeout: cfg.PreloadTimeout,
		IdleTTL:        cfg.FlowIdleTTL,
		Logger:         slog.Default(),
	}
	if cfg.FetchRetries == 0 {
		// -fetch-retries=0 means no retries, not the package default
		opts.FetchRetries = -1
	}
	if cfg.ServerPreload {
		opts.Loader = media.NewHTTPLoader(nil, maxPreloadBytes)
	}
	return flow.NewRegistry(store, opts)
}

type FlowHandler struct {
	flows *flow.Registry
	cfg   cliparse.Config
}

func NewFlowHandler(flows *flow.Registry, cfg cliparse.Config) *FlowHandler {
	return &FlowHandler{flows: flows, cfg: cfg}
}

// StartFlow handles POST /flows
func (h *FlowHandler) StartFlow(w http.ResponseWriter, r *http.Request) {
	var req models.StartFlowRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	// A client hanging up must not leave the new flow on its error screen
	c, err := h.flows.Start(context.WithoutCancel(r.Context()), req.UserID)
	if errors.Is(err, flow.ErrIdentity) {
		// The flow was not kept; send the participant to the exit URL.
		w.Header().Set("Location", h.cfg.ExitURL)
		middleware.JSONResponse(w, http.StatusSeeOther, models.StartFlowResponse{Screen: c.Screen()})
		return
	}
	if err != nil {
		slog.Warn("flow started without a snapshot", "flow_id", c.ID(), "error", err)
	}

	slog.Info("flow started", "flow_id", c.ID(), "user_id", req.UserID)

	middleware.JSONResponse(w, http.StatusCreated, models.StartFlowResponse{
		FlowID:  c.ID(),
		FlowKey: auth.GenerateFlowKey(c.ID(), h.cfg.FlowKeySalt),
		Screen:  c.Screen(),
	})
}

// GetFlow handles GET /flows/{id}
func (h *FlowHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeFlow(w, http.StatusOK, c)
}

// SetBusy handles POST /flows/{id}/busy
func (h *FlowHandler) SetBusy(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req models.SetBusyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	c.SetBusy(req.IsBusy, req.Message)
	writeFlow(w, http.StatusOK, c)
}

// SubmissionCreated handles POST /flows/{id}/submission-created
func (h *FlowHandler) SubmissionCreated(w http.ResponseWriter, r *http.Request) {
	h.reevaluate(w, r, (*flow.Controller).SubmissionCreated)
}

// ResponsesFinished handles POST /flows/{id}/responses-finished
func (h *FlowHandler) ResponsesFinished(w http.ResponseWriter, r *http.Request) {
	h.reevaluate(w, r, (*flow.Controller).ResponsesFinished)
}

// Refresh handles POST /flows/{id}/refresh
// Used to retry after the error screen or to pick up new submissions.
func (h *FlowHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.reevaluate(w, r, (*flow.Controller).Reevaluate)
}

// PreloadDone handles POST /flows/{id}/preloads/{submission_id}
// Signals for submissions outside the preload window are ignored.
func (h *FlowHandler) PreloadDone(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	submissionID := r.PathValue("submission_id")
	if !c.PreloadDone(submissionID) {
		slog.Debug("ignored preload signal", "flow_id", c.ID(), "submission_id", submissionID)
	}
	writeFlow(w, http.StatusOK, c)
}

// EndFlow handles DELETE /flows/{id}
func (h *FlowHandler) EndFlow(w http.ResponseWriter, r *http.Request) {
	flowID := r.PathValue("id")
	if err := h.flows.End(flowID); errors.Is(err, flow.ErrFlowNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Flow not found")
		return
	}

	slog.Info("flow ended", "flow_id", flowID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *FlowHandler) lookup(w http.ResponseWriter, r *http.Request) (*flow.Controller, bool) {
	flowID := r.PathValue("id")
	if flowID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "flow_id is required")
		return nil, false
	}

	c, err := h.flows.Get(flowID)
	if errors.Is(err, flow.ErrFlowNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Flow not found")
		return nil, false
	}
	return c, true
}

// reevaluate runs a completion callback. A failed snapshot fetch is not an
// HTTP error: the flow is on its error screen and the client renders it.
func (h *FlowHandler) reevaluate(w http.ResponseWriter, r *http.Request, fn func(*flow.Controller, context.Context) error) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	err := fn(c, context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, flow.ErrExited):
		middleware.ErrorResponse(w, http.StatusConflict, "Flow has exited")
		return
	case errors.Is(err, flow.ErrNotStarted):
		middleware.ErrorResponse(w, http.StatusConflict, "Flow has not started")
		return
	case err != nil:
		slog.Warn("flow refresh failed", "flow_id", c.ID(), "error", err)
	}

	writeFlow(w, http.StatusOK, c)
}

func writeFlow(w http.ResponseWriter, status int, c *flow.Controller) {
	middleware.JSONResponse(w, status, models.FlowResponse{
		State:  c.State(),
		Screen: c.Screen(),
	})
}
