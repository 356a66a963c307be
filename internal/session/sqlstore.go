package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"careermatrix/internal/db"
	"careermatrix/internal/models"
)

// SQLStore keeps sessions in the relational store's sessions table. The
// user snapshot travels as a JSON column so verification needs no join.
type SQLStore struct {
	db *sql.DB
	ph func(int) string
}

func NewSQLStore(database *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: database, ph: db.Placeholder(driver)}
}

func (s *SQLStore) Put(ctx context.Context, sess models.Session) error {
	snapshot, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user snapshot: %w", err)
	}
	updateQ := fmt.Sprintf(
		`UPDATE sessions SET user_id=%s, user_snapshot=%s, expires_at=%s, created_at=%s WHERE id=%s`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5),
	)
	res, err := s.db.ExecContext(ctx, updateQ, sess.UserID, string(snapshot), sess.ExpiresAt, sess.CreatedAt, sess.ID)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows > 0 {
		return nil
	}
	insertQ := fmt.Sprintf(
		`INSERT INTO sessions(id,user_id,user_snapshot,expires_at,created_at) VALUES(%s,%s,%s,%s,%s)`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5),
	)
	if _, err := s.db.ExecContext(ctx, insertQ, sess.ID, sess.UserID, string(snapshot), sess.ExpiresAt, sess.CreatedAt); err != nil {
		// Duplicate-token race with a concurrent Put: retry as update.
		if isDuplicateErr(err) {
			_, err = s.db.ExecContext(ctx, updateQ, sess.UserID, string(snapshot), sess.ExpiresAt, sess.CreatedAt, sess.ID)
		}
		return err
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (models.Session, error) {
	q := fmt.Sprintf(
		`SELECT id,user_id,user_snapshot,expires_at,created_at FROM sessions WHERE id=%s AND expires_at > %s`,
		s.ph(1), s.ph(2),
	)
	var sess models.Session
	var snapshot string
	err := s.db.QueryRowContext(ctx, q, id, time.Now().UTC()).
		Scan(&sess.ID, &sess.UserID, &snapshot, &sess.ExpiresAt, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	if err := json.Unmarshal([]byte(snapshot), &sess.User); err != nil {
		return models.Session{}, fmt.Errorf("unmarshal user snapshot: %w", err)
	}
	return sess, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	q := fmt.Sprintf(`DELETE FROM sessions WHERE id=%s`, s.ph(1))
	_, err := s.db.ExecContext(ctx, q, id)
	return err
}

func (s *SQLStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	q := fmt.Sprintf(`DELETE FROM sessions WHERE expires_at <= %s`, s.ph(1))
	res, err := s.db.ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(rows), nil
}

func isDuplicateErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
