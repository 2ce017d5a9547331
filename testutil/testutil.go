// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/photo-swap/auth"
	"github.com/danielhkuo/photo-swap/cliparse"
	"github.com/danielhkuo/photo-swap/db"
	"github.com/danielhkuo/photo-swap/middleware"
	"github.com/danielhkuo/photo-swap/models"
)

// TestDBURL opens a private in-memory SQLite database per connection pool
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore returns a Store over a fresh test database
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	return db.NewStore(SetupTestDB(t), db.TypeSQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    TestDBURL,
		DatabaseType:   db.TypeSQLite,
		FlowKeySalt:    "test-flow-salt",
		ExitURL:        "/goodbye",
		FetchTimeout:   2 * time.Second,
		FetchRetries:   0,
		PreloadTimeout: 2 * time.Second,
	}
}

// CreateTestUser creates a participant and returns its ID
func CreateTestUser(t *testing.T, store *db.Store, name string) string {
	t.Helper()

	userID := uuid.NewString()
	err := store.CreateUser(context.Background(), models.User{ID: userID, Name: name, CreatedAt: db.Now()})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return userID
}

// CreateTestSubmission creates the participant's submission and returns its ID
func CreateTestSubmission(t *testing.T, store *db.Store, userID string) string {
	t.Helper()

	submissionID, _ := auth.GenerateID(16)
	err := store.CreateSubmission(context.Background(), models.Submission{
		ID:        submissionID,
		UserID:    userID,
		PhotoURL:  "https://img.test/" + submissionID + ".jpg",
		CreatedAt: db.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to create test submission: %v", err)
	}
	return submissionID
}

// CreateTestResponse records userID's response to a submission
func CreateTestResponse(t *testing.T, store *db.Store, submissionID, userID string) string {
	t.Helper()

	responseID, _ := auth.GenerateID(16)
	err := store.CreateResponse(context.Background(), models.Response{
		ID:           responseID,
		SubmissionID: submissionID,
		UserID:       userID,
		Comment:      "looks great",
		CreatedAt:    db.Now(),
	})
	if err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}
	return responseID
}

// FlowHeaders returns the headers that authorize requests against a flow
func FlowHeaders(cfg cliparse.Config, flowID string) map[string]string {
	return map[string]string{middleware.FlowKeyHeader: auth.GenerateFlowKey(flowID, cfg.FlowKeySalt)}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
