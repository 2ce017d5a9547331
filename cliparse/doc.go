// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

LoadEnv pulls a .env file into the environment (existing variables win),
then ParseFlags returns a Config struct with all settings:

	_ = cliparse.LoadEnv()
	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Flags and Environment Variables

	-p                PORT             Server port (default 3318)
	-d                DATABASE_URL     Database URL (required)
	-t                DATABASE_TYPE    sqlite or postgres (default sqlite)
	-flow-salt        FLOW_KEY_SALT    Secret for flow key HMAC (required)
	-exit-url         EXIT_URL         Exit redirect target (default /)
	-fetch-timeout    FETCH_TIMEOUT    Per-fetch timeout (default 10s)
	-fetch-retries    FETCH_RETRIES    Submission fetch retries (default 3)
	-preload-timeout  PRELOAD_TIMEOUT  Server-side preload timeout (default 30s)
	-server-preload   SERVER_PRELOAD   Preload photos on the server (default false)
	-flow-idle-ttl    FLOW_IDLE_TTL    Drop flows idle this long, 0 disables (default 30m)

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if DATABASE_URL or FLOW_KEY_SALT is missing,
if the database type is unknown, or if a numeric or duration value does
not parse.
*/
package cliparse
