// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - User: a participant identity
  - Submission: one photo entry per user, with its embedded responses
  - Response: another participant's reaction to a submission
  - Stage: create_submission, create_responses or view_submissions
  - FlowState: observable state of a returning-user flow
  - Screen: the downstream screen a client renders, with its props
  - PreloadRequest: a media URL the client should eagerly load

# Request Types

  - CreateUserRequest: name
  - CreateSubmissionRequest: photo_url
  - CreateResponseRequest: user_id, comment
  - StartFlowRequest: user_id
  - SetBusyRequest: is_busy, message

# Response Types

  - CreateUserResponse, CreateSubmissionResponse, CreateResponseResponse
  - ListSubmissionsResponse: submissions
  - StartFlowResponse: flow_id, flow_key, screen
  - FlowResponse: state, screen
  - ErrorResponse: error, message

# Screen Kinds

	ScreenLoading          = "loading"
	ScreenCreateSubmission = "create_submission"
	ScreenCreateResponses  = "create_responses"
	ScreenViewSubmissions  = "view_submissions"
	ScreenExit             = "exit"
	ScreenError            = "error"

Stage values serialize to the same names as their screens.
*/
package models
