// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFlowKey = errors.New("invalid flow key")
	ErrMissingFlowKey = errors.New("missing flow key")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateFlowKey derives the key a client must present to drive a flow.
// It is an HMAC of the flow ID, so nothing needs to be stored to check it.
func GenerateFlowKey(flowID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("flow:"))
	h.Write([]byte(flowID))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// ValidateFlowKey checks a presented key against the flow ID
func ValidateFlowKey(flowID, flowKey, salt string) error {
	if flowKey == "" {
		return ErrMissingFlowKey
	}
	expected := GenerateFlowKey(flowID, salt)
	if !hmac.Equal([]byte(flowKey), []byte(expected)) {
		return ErrInvalidFlowKey
	}
	return nil
}
