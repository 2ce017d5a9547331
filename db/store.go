// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/photo-swap/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrOwnSubmission = errors.New("cannot respond to own submission")
	ErrUnknownUser   = errors.New("unknown user")
)

// Store is the data-access layer for participants, submissions and
// responses. It implements flow.Source.
type Store struct {
	db     *sql.DB
	dbType string
}

func NewStore(db *sql.DB, dbType string) *Store {
	return &Store{db: db, dbType: dbType}
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dbType != TypePostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CreateUser inserts a participant.
func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO participant (id, name, created_at)
		VALUES (?, ?, ?)
	`), user.ID, user.Name, user.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// FetchUser loads a participant by id.
func (s *Store) FetchUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, name, created_at FROM participant WHERE id = ?
	`), userID).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("participant %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query participant: %w", err)
	}
	return user, nil
}

// FetchSubmissions returns the full snapshot of submissions with their
// responses, oldest first. Every submission has a non-nil Responses slice.
// The snapshot is the same for every participant; userID only scopes the
// request.
func (s *Store) FetchSubmissions(ctx context.Context, userID string) ([]models.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, photo_url, created_at
		FROM submission
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}

	submissions := []models.Submission{}
	index := map[string]int{}
	for rows.Next() {
		sub := models.Submission{Responses: []models.Response{}}
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.PhotoURL, &sub.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		index[sub.ID] = len(submissions)
		submissions = append(submissions, sub)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	rows.Close()

	// Separate query; SQLite runs on a single connection.
	rows, err = s.db.QueryContext(ctx, `
		SELECT id, submission_id, user_id, comment, created_at
		FROM response
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var resp models.Response
		if err := rows.Scan(&resp.ID, &resp.SubmissionID, &resp.UserID, &resp.Comment, &resp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		i, ok := index[resp.SubmissionID]
		if !ok {
			continue
		}
		submissions[i].Responses = append(submissions[i].Responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}

	return submissions, nil
}

// CreateSubmission stores a participant's single submission.
func (s *Store) CreateSubmission(ctx context.Context, sub models.Submission) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if ok, err := s.exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM participant WHERE id = ?)`, sub.UserID); err != nil {
		return err
	} else if !ok {
		return ErrUnknownUser
	}

	if ok, err := s.exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM submission WHERE user_id = ?)`, sub.UserID); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("submission for %s: %w", sub.UserID, ErrAlreadyExists)
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO submission (id, user_id, photo_url, created_at)
		VALUES (?, ?, ?, ?)
	`), sub.ID, sub.UserID, sub.PhotoURL, sub.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submission: %w", err)
	}
	return nil
}

// CreateResponse stores a participant's response to someone else's
// submission. Each participant responds at most once per submission.
func (s *Store) CreateResponse(ctx context.Context, resp models.Response) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var author string
	err = tx.QueryRowContext(ctx, s.rebind(`
		SELECT user_id FROM submission WHERE id = ?
	`), resp.SubmissionID).Scan(&author)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("submission %s: %w", resp.SubmissionID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("query submission: %w", err)
	}
	if author == resp.UserID {
		return ErrOwnSubmission
	}

	if ok, err := s.exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM participant WHERE id = ?)`, resp.UserID); err != nil {
		return err
	} else if !ok {
		return ErrUnknownUser
	}

	if ok, err := s.exists(ctx, tx, `
		SELECT EXISTS(SELECT 1 FROM response WHERE submission_id = ? AND user_id = ?)
	`, resp.SubmissionID, resp.UserID); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("response by %s: %w", resp.UserID, ErrAlreadyExists)
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO response (id, submission_id, user_id, comment, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), resp.ID, resp.SubmissionID, resp.UserID, resp.Comment, resp.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit response: %w", err)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var ok bool
	if err := tx.QueryRowContext(ctx, s.rebind(query), args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	return ok, nil
}

// Now is the timestamp used for new rows. Stored values are UTC and
// truncated to microseconds so they compare equal after a round trip.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
