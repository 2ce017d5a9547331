// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, client IP) and completion (status,
duration_ms).

# Flow Keys

Flow routes are wrapped with RequireFlowKey, which checks the X-Flow-Key
header against the {id} path value:

	mux.HandleFunc("GET /flows/{id}",
		middleware.WithLogging(middleware.RequireFlowKey(cfg.FlowKeySalt, h.GetFlow)))

A missing key is 401; a key for another flow is 403.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.StartFlowRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

Bodies are capped at 1 MiB.
*/
package middleware
