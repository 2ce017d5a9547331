// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/photo-swap/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	conn, err := Open(TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	// second call must be a no-op
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema is not idempotent: %v", err)
	}

	return NewStore(conn, TypeSQLite)
}

func mustCreateUser(t *testing.T, s *Store, id string) {
	t.Helper()
	if err := s.CreateUser(context.Background(), models.User{ID: id, Name: "name-" + id, CreatedAt: Now()}); err != nil {
		t.Fatalf("Failed to create user %s: %v", id, err)
	}
}

func mustCreateSubmission(t *testing.T, s *Store, id, userID string, at time.Time) {
	t.Helper()
	err := s.CreateSubmission(context.Background(), models.Submission{
		ID: id, UserID: userID, PhotoURL: "https://img.test/" + id, CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("Failed to create submission %s: %v", id, err)
	}
}

func TestStore_FetchUser(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "u1")

	user, err := s.FetchUser(ctx, "u1")
	if err != nil {
		t.Fatalf("FetchUser() error = %v", err)
	}
	if user.ID != "u1" || user.Name != "name-u1" {
		t.Errorf("FetchUser() = %+v", user)
	}

	_, err = s.FetchUser(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FetchUser(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_FetchSubmissionsEmpty(t *testing.T) {
	s := setupStore(t)

	subs, err := s.FetchSubmissions(context.Background(), "u1")
	if err != nil {
		t.Fatalf("FetchSubmissions() error = %v", err)
	}
	if subs == nil || len(subs) != 0 {
		t.Errorf("expected empty non-nil snapshot, got %#v", subs)
	}
}

func TestStore_SnapshotWithResponses(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	for _, id := range []string{"u1", "u2", "u3"} {
		mustCreateUser(t, s, id)
	}
	base := Now()
	mustCreateSubmission(t, s, "s1", "u1", base)
	mustCreateSubmission(t, s, "s2", "u2", base.Add(time.Second))
	mustCreateSubmission(t, s, "s3", "u3", base.Add(2*time.Second))

	err := s.CreateResponse(ctx, models.Response{ID: "r1", SubmissionID: "s2", UserID: "u1", Comment: "nice", CreatedAt: Now()})
	if err != nil {
		t.Fatalf("CreateResponse() error = %v", err)
	}
	err = s.CreateResponse(ctx, models.Response{ID: "r2", SubmissionID: "s2", UserID: "u3", CreatedAt: Now()})
	if err != nil {
		t.Fatalf("CreateResponse() error = %v", err)
	}

	subs, err := s.FetchSubmissions(ctx, "u1")
	if err != nil {
		t.Fatalf("FetchSubmissions() error = %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("expected 3 submissions, got %d", len(subs))
	}

	wantOrder := []string{"s1", "s2", "s3"}
	for i, id := range wantOrder {
		if subs[i].ID != id {
			t.Errorf("submission %d = %s, want %s", i, subs[i].ID, id)
		}
		if subs[i].Responses == nil {
			t.Errorf("submission %s has nil responses", id)
		}
	}

	if len(subs[1].Responses) != 2 {
		t.Fatalf("expected 2 responses on s2, got %d", len(subs[1].Responses))
	}
	if subs[1].Responses[0].UserID != "u1" || subs[1].Responses[0].Comment != "nice" {
		t.Errorf("unexpected first response %+v", subs[1].Responses[0])
	}
	if len(subs[0].Responses) != 0 || len(subs[2].Responses) != 0 {
		t.Error("responses attached to the wrong submission")
	}
	if subs[0].PhotoURL != "https://img.test/s1" || subs[0].UserID != "u1" {
		t.Errorf("unexpected submission %+v", subs[0])
	}
}

func TestStore_CreateSubmissionRules(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "u1")
	mustCreateSubmission(t, s, "s1", "u1", Now())

	tests := []struct {
		name    string
		sub     models.Submission
		wantErr error
	}{
		{"second submission", models.Submission{ID: "s2", UserID: "u1", PhotoURL: "x"}, ErrAlreadyExists},
		{"unknown user", models.Submission{ID: "s3", UserID: "ghost", PhotoURL: "x"}, ErrUnknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.sub.CreatedAt = Now()
			err := s.CreateSubmission(ctx, tt.sub)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateSubmission() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStore_CreateResponseRules(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "u1")
	mustCreateUser(t, s, "u2")
	mustCreateSubmission(t, s, "s1", "u1", Now())

	if err := s.CreateResponse(ctx, models.Response{ID: "r1", SubmissionID: "s1", UserID: "u2", CreatedAt: Now()}); err != nil {
		t.Fatalf("CreateResponse() error = %v", err)
	}

	tests := []struct {
		name    string
		resp    models.Response
		wantErr error
	}{
		{"duplicate", models.Response{ID: "r2", SubmissionID: "s1", UserID: "u2"}, ErrAlreadyExists},
		{"own submission", models.Response{ID: "r3", SubmissionID: "s1", UserID: "u1"}, ErrOwnSubmission},
		{"unknown submission", models.Response{ID: "r4", SubmissionID: "nope", UserID: "u2"}, ErrNotFound},
		{"unknown user", models.Response{ID: "r5", SubmissionID: "s1", UserID: "ghost"}, ErrUnknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.resp.CreatedAt = Now()
			err := s.CreateResponse(ctx, tt.resp)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateResponse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStore_Rebind(t *testing.T) {
	pg := NewStore(nil, TypePostgres)
	got := pg.rebind("SELECT 1 FROM t WHERE a = ? AND b = ?")
	want := "SELECT 1 FROM t WHERE a = $1 AND b = $2"
	if got != want {
		t.Errorf("rebind() = %q, want %q", got, want)
	}

	lite := NewStore(nil, TypeSQLite)
	q := "SELECT ? "
	if lite.rebind(q) != q {
		t.Errorf("sqlite queries must not be rebound")
	}
}

func TestOpen_UnsupportedType(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("expected error for unsupported database type")
	}
}
