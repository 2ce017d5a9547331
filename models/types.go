// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Stage is the phase of the flow currently shown to a participant.
type Stage int

const (
	StageCreateSubmission Stage = iota + 1
	StageCreateResponses
	StageViewSubmissions
)

var stageNames = map[Stage]string{
	StageCreateSubmission: "create_submission",
	StageCreateResponses:  "create_responses",
	StageViewSubmissions:  "view_submissions",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for stage, n := range stageNames {
		if n == name {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", name)
}

// Screen kinds
const (
	ScreenLoading          = "loading"
	ScreenCreateSubmission = "create_submission"
	ScreenCreateResponses  = "create_responses"
	ScreenViewSubmissions  = "view_submissions"
	ScreenExit             = "exit"
	ScreenError            = "error"
)

// Domain types

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Submission struct {
	ID        string     `json:"submission_id"`
	UserID    string     `json:"user_id"`
	PhotoURL  string     `json:"photo_url"`
	CreatedAt time.Time  `json:"created_at"`
	Responses []Response `json:"responses"` // never nil once loaded
}

type Response struct {
	ID           string    `json:"response_id"`
	SubmissionID string    `json:"submission_id"`
	UserID       string    `json:"user_id"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// PreloadRequest asks the client (or the server-side loader) to eagerly
// fetch a submission's media.
type PreloadRequest struct {
	SubmissionID string `json:"submission_id"`
	PhotoURL     string `json:"photo_url"`
}

// FlowState is the externally observable state of one returning-user flow.
type FlowState struct {
	FlowID            string       `json:"flow_id"`
	UserID            string       `json:"user_id"`
	IsBusy            bool         `json:"is_busy"`
	LoadingMessage    string       `json:"loading_message"`
	Stage             Stage        `json:"stage"`
	Submissions       []Submission `json:"submissions"`
	FinishedResponses bool         `json:"finished_responses"`
	PreloadCursor     int          `json:"preload_cursor"`
	Exited            bool         `json:"exited"`
	Error             string       `json:"error,omitempty"`
}

// Screen is the single downstream screen a client should render, with the
// props that screen consumes.
type Screen struct {
	Kind        string           `json:"kind"`
	Message     string           `json:"message,omitempty"`
	UserID      string           `json:"user_id,omitempty"`
	Submissions []Submission     `json:"submissions,omitempty"`
	RedirectURL string           `json:"redirect_url,omitempty"`
	Preloads    []PreloadRequest `json:"preloads"`
}

// Request types

type CreateUserRequest struct {
	Name string `json:"name"`
}

type CreateSubmissionRequest struct {
	PhotoURL string `json:"photo_url"`
}

type CreateResponseRequest struct {
	UserID  string `json:"user_id"`
	Comment string `json:"comment"`
}

type StartFlowRequest struct {
	UserID string `json:"user_id"`
}

type SetBusyRequest struct {
	IsBusy  bool   `json:"is_busy"`
	Message string `json:"message"`
}

// Response types

type CreateUserResponse struct {
	UserID string `json:"user_id"`
}

type CreateSubmissionResponse struct {
	SubmissionID string `json:"submission_id"`
}

type CreateResponseResponse struct {
	ResponseID string `json:"response_id"`
}

type ListSubmissionsResponse struct {
	Submissions []Submission `json:"submissions"`
}

type StartFlowResponse struct {
	FlowID  string `json:"flow_id"`
	FlowKey string `json:"flow_key"`
	Screen  Screen `json:"screen"`
}

type FlowResponse struct {
	State  FlowState `json:"state"`
	Screen Screen    `json:"screen"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
