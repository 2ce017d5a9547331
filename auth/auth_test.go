// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateFlowKey(t *testing.T) {
	tests := []struct {
		name   string
		flowID string
		salt   string
	}{
		{"standard", "0b6c3c1e-8a4f-4a8e-9d43-0c7f4f2b9a10", "secret-salt"},
		{"empty flow id", "", "salt"},
		{"empty salt", "flow-456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := GenerateFlowKey(tt.flowID, tt.salt)
			if key == "" {
				t.Fatal("GenerateFlowKey() returned empty string")
			}
			if key != GenerateFlowKey(tt.flowID, tt.salt) {
				t.Error("GenerateFlowKey() is not deterministic")
			}
			if key == GenerateFlowKey(tt.flowID+"x", tt.salt) {
				t.Error("GenerateFlowKey() produced same key for different flow IDs")
			}
			if strings.ContainsAny(key, "=+/") {
				t.Errorf("GenerateFlowKey() is not URL-safe: %q", key)
			}
		})
	}
}

func TestValidateFlowKey(t *testing.T) {
	flowID := "flow-123"
	salt := "test-salt"
	validKey := GenerateFlowKey(flowID, salt)

	tests := []struct {
		name    string
		flowID  string
		key     string
		salt    string
		wantErr error
	}{
		{"valid key", flowID, validKey, salt, nil},
		{"wrong key", flowID, "wrong-key", salt, ErrInvalidFlowKey},
		{"wrong flow id", "flow-999", validKey, salt, ErrInvalidFlowKey},
		{"wrong salt", flowID, validKey, "different-salt", ErrInvalidFlowKey},
		{"empty key", flowID, "", salt, ErrMissingFlowKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlowKey(tt.flowID, tt.key, tt.salt)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFlowKey() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
