// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the photo-swap API server.

Photo Swap is a photo exchange: every participant submits one photo, then
responds to everyone else's. A returning participant gets a flow that
works out where they left off and serves exactly one screen at a time:
submit, respond, or browse the gallery.

# Starting the Server

	DATABASE_URL=file:photoswap.db FLOW_KEY_SALT=dev go run .

Or with flags:

	go run . -p 3318 -d "postgres://..." -t postgres -flow-salt dev

A .env file in the working directory is loaded first; real environment
variables win over it.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - FLOW_KEY_SALT (-flow-salt): Secret for flow key HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - EXIT_URL, FETCH_TIMEOUT, FETCH_RETRIES, PRELOAD_TIMEOUT, SERVER_PRELOAD,
    FLOW_IDLE_TTL

# Architecture

  - flow: ordering, stage classifier, preload sequencer, flow controller
  - handlers: HTTP request handlers (users, submissions, flows)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, flow keys, JSON helpers
  - media: Server-side photo preloading
  - models: Domain, request and response types
  - auth: ID generation and flow keys
  - db: Connections, schema and the Store
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
