// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/photo-swap/cliparse"
	"github.com/danielhkuo/photo-swap/db"
	"github.com/danielhkuo/photo-swap/flow"
	"github.com/danielhkuo/photo-swap/handlers"
	"github.com/danielhkuo/photo-swap/middleware"
)

func NewRouter(store *db.Store, flows *flow.Registry, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(store)
	submissionHandler := handlers.NewSubmissionHandler(store)
	flowHandler := handlers.NewFlowHandler(flows, cfg)

	// flowRoute requires the flow key on top of request logging
	flowRoute := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireFlowKey(cfg.FlowKeySalt, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Participants and their data
	mux.HandleFunc("POST /users", middleware.WithLogging(userHandler.CreateUser))
	mux.HandleFunc("GET /users/{id}", middleware.WithLogging(userHandler.GetUser))
	mux.HandleFunc("GET /users/{id}/submissions", middleware.WithLogging(submissionHandler.ListSubmissions))
	mux.HandleFunc("POST /users/{id}/submissions", middleware.WithLogging(submissionHandler.CreateSubmission))
	mux.HandleFunc("POST /submissions/{id}/responses", middleware.WithLogging(submissionHandler.CreateResponse))

	// Returning-user flows
	mux.HandleFunc("POST /flows", middleware.WithLogging(flowHandler.StartFlow))
	mux.HandleFunc("GET /flows/{id}", flowRoute(flowHandler.GetFlow))
	mux.HandleFunc("DELETE /flows/{id}", flowRoute(flowHandler.EndFlow))
	mux.HandleFunc("POST /flows/{id}/busy", flowRoute(flowHandler.SetBusy))
	mux.HandleFunc("POST /flows/{id}/submission-created", flowRoute(flowHandler.SubmissionCreated))
	mux.HandleFunc("POST /flows/{id}/responses-finished", flowRoute(flowHandler.ResponsesFinished))
	mux.HandleFunc("POST /flows/{id}/refresh", flowRoute(flowHandler.Refresh))
	mux.HandleFunc("POST /flows/{id}/preloads/{submission_id}", flowRoute(flowHandler.PreloadDone))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("photo-swap API v1"))
	})

	return mux
}
