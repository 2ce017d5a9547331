// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the photo-swap API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	flows := handlers.NewFlowRegistry(store, cfg)
	mux := router.NewRouter(store, flows, cfg)

# Endpoints

Health:

	GET /health

Participants and data:

	POST /users                        - Create participant
	GET  /users/{id}                   - Get participant
	GET  /users/{id}/submissions       - Snapshot as a flow sees it
	POST /users/{id}/submissions       - Submit the participant's photo
	POST /submissions/{id}/responses   - Respond to a submission

Flows (every route except POST /flows requires X-Flow-Key):

	POST   /flows                                - Start; 303 to exit URL on unknown user
	GET    /flows/{id}                           - State and current screen
	DELETE /flows/{id}                           - End the flow
	POST   /flows/{id}/busy                      - Set or clear the loading overlay
	POST   /flows/{id}/submission-created        - Submission screen finished
	POST   /flows/{id}/responses-finished        - Response screen finished
	POST   /flows/{id}/refresh                   - Reload the snapshot
	POST   /flows/{id}/preloads/{submission_id}  - Client finished a preload
*/
package router
