// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the photo-swap API.

# Handler Types

  - UserHandler: participant creation and lookup
  - SubmissionHandler: photo submissions and responses
  - FlowHandler: returning-user flows

Data handlers take the *db.Store and Config; the flow handler takes the
flow registry:

	flows := handlers.NewFlowRegistry(store, cfg)
	flowHandler := handlers.NewFlowHandler(flows, cfg)

NewFlowRegistry turns the Config into flow options and, when
SERVER_PRELOAD is set, installs the media HTTP loader. Flows left
untouched for FLOW_IDLE_TTL are dropped and answer 404 afterwards.

# Flow Lifecycle

	POST /flows                           → StartFlow (returns flow_key)
	GET  /flows/{id}                      → GetFlow
	POST /flows/{id}/submission-created   → SubmissionCreated
	POST /flows/{id}/responses-finished   → ResponsesFinished
	POST /flows/{id}/refresh              → Refresh
	POST /flows/{id}/busy                 → SetBusy
	POST /flows/{id}/preloads/{sub}       → PreloadDone
	DELETE /flows/{id}                    → EndFlow

Every response carries {state, screen}. A snapshot that could not be
loaded is reported through the error screen with status 200, not as an
HTTP error. A participant whose identity cannot be loaded gets 303 See
Other to EXIT_URL and no flow.

# Data Rules

  - one submission per participant (409 on a second)
  - one response per participant per submission (409)
  - authors cannot respond to their own submission (403)
*/
package handlers
