// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package media provides the server-side photo preloader used when
// SERVER_PRELOAD is enabled. Without it, preloads are listed on each
// screen and the client reports completion itself.
package media
