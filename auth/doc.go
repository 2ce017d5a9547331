// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides ID generation and flow key utilities.

# Flow Keys

A flow key is an HMAC-SHA256 of the flow ID under the server's FLOW_KEY_SALT:

	key := auth.GenerateFlowKey(flowID, salt)
	err := auth.ValidateFlowKey(flowID, key, salt)

Keys are URL-safe base64 without padding. They are returned once when a
flow starts and must be sent back in the X-Flow-Key header on every later
flow request. Since they are deterministic, nothing is stored.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
