// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielhkuo/photo-swap/auth"
	"github.com/danielhkuo/photo-swap/db"
	"github.com/danielhkuo/photo-swap/middleware"
	"github.com/danielhkuo/photo-swap/models"
)

const maxCommentLength = 2000

type SubmissionHandler struct {
	store *db.Store
}

func NewSubmissionHandler(store *db.Store) *SubmissionHandler {
	return &SubmissionHandler{store: store}
}

// CreateSubmission handles POST /users/{id}/submissions
func (h *SubmissionHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var req models.CreateSubmissionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if !validPhotoURL(req.PhotoURL) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "photo_url must be an absolute http(s) URL")
		return
	}

	submissionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate submission ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create submission")
		return
	}

	err = h.store.CreateSubmission(r.Context(), models.Submission{
		ID:        submissionID,
		UserID:    userID,
		PhotoURL:  req.PhotoURL,
		CreatedAt: db.Now(),
	})
	switch {
	case errors.Is(err, db.ErrUnknownUser):
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, db.ErrAlreadyExists):
		middleware.ErrorResponse(w, http.StatusConflict, "User has already submitted a photo")
		return
	case err != nil:
		slog.Error("failed to insert submission", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create submission")
		return
	}

	slog.Info("submission created", "submission_id", submissionID, "user_id", userID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSubmissionResponse{SubmissionID: submissionID})
}

// CreateResponse handles POST /submissions/{id}/responses
func (h *SubmissionHandler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	submissionID := r.PathValue("id")
	if submissionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "submission_id is required")
		return
	}

	var req models.CreateResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if len(req.Comment) > maxCommentLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "comment is too long")
		return
	}

	responseID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate response ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create response")
		return
	}

	err = h.store.CreateResponse(r.Context(), models.Response{
		ID:           responseID,
		SubmissionID: submissionID,
		UserID:       req.UserID,
		Comment:      strings.TrimSpace(req.Comment),
		CreatedAt:    db.Now(),
	})
	switch {
	case errors.Is(err, db.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Submission not found")
		return
	case errors.Is(err, db.ErrUnknownUser):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown user_id")
		return
	case errors.Is(err, db.ErrOwnSubmission):
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot respond to your own submission")
		return
	case errors.Is(err, db.ErrAlreadyExists):
		middleware.ErrorResponse(w, http.StatusConflict, "User has already responded to this submission")
		return
	case err != nil:
		slog.Error("failed to insert response", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create response")
		return
	}

	slog.Info("response created", "response_id", responseID, "submission_id", submissionID, "user_id", req.UserID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateResponseResponse{ResponseID: responseID})
}

// ListSubmissions handles GET /users/{id}/submissions
// Returns the snapshot exactly as a flow for this user would load it.
func (h *SubmissionHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if _, err := h.store.FetchUser(r.Context(), userID); errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	subs, err := h.store.FetchSubmissions(r.Context(), userID)
	if err != nil {
		slog.Error("failed to query submissions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListSubmissionsResponse{Submissions: subs})
}

func validPhotoURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
