package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"careermatrix/internal/db"
	"careermatrix/internal/models"
)

type SQLStore struct {
	db *sql.DB
	ph func(int) string
}

func NewSQL(database *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: database, ph: db.Placeholder(driver)}
}

func (s *SQLStore) q(format string, n int) string {
	args := make([]any, n)
	for i := 0; i < n; i++ {
		args[i] = s.ph(i + 1)
	}
	return fmt.Sprintf(format, args...)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO users(id,email,name,role,password_hash,active,created_at) VALUES(%s,%s,%s,%s,%s,%s,%s)`, 7),
		u.ID, u.Email, u.Name, string(u.Role), u.PasswordHash, boolToInt(u.Active), u.CreatedAt,
	)
	if err != nil && isDuplicateErr(err) {
		return ErrConflict
	}
	return err
}

const userCols = `id,email,name,role,password_hash,active,created_at`

func (s *SQLStore) scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	var active int
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &active, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	u.Active = active == 1
	return u, nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		s.q(`SELECT `+userCols+` FROM users WHERE email=%s`, 1), email))
}

func (s *SQLStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		s.q(`SELECT `+userCols+` FROM users WHERE id=%s`, 1), id))
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.User
	for rows.Next() {
		var u models.User
		var active int
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Active = active == 1
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateUser(ctx context.Context, u models.User) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE users SET email=%s, name=%s, role=%s WHERE id=%s`, 4),
		u.Email, u.Name, string(u.Role), u.ID,
	)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrConflict
		}
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) SetUserActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE users SET active=%s WHERE id=%s`, 2), boolToInt(active), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) UpdateUserPasswordHash(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE users SET password_hash=%s WHERE id=%s`, 2), passwordHash, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) CreatePasswordResetToken(ctx context.Context, t models.PasswordResetToken) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO password_reset_tokens(id,user_id,token_hash,expires_at,created_at) VALUES(%s,%s,%s,%s,%s)`, 5),
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt,
	)
	return err
}

func (s *SQLStore) GetPasswordResetToken(ctx context.Context, tokenHash string) (models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	var used sql.NullTime
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id,user_id,token_hash,expires_at,used_at,created_at FROM password_reset_tokens WHERE token_hash=%s`, 1),
		tokenHash,
	).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &used, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return models.PasswordResetToken{}, ErrNotFound
	}
	if err != nil {
		return models.PasswordResetToken{}, err
	}
	if used.Valid {
		tm := used.Time
		t.UsedAt = &tm
	}
	return t, nil
}

func (s *SQLStore) ConsumeResetTokenAndSetPassword(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (string, error) {
	t, err := s.GetPasswordResetToken(ctx, tokenHash)
	if err != nil {
		return "", err
	}
	if t.UsedAt != nil || !t.ExpiresAt.After(now) {
		return "", ErrNotFound
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		s.q(`UPDATE password_reset_tokens SET used_at=%s WHERE id=%s AND used_at IS NULL`, 2), now, t.ID)
	if err != nil {
		return "", err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if rows == 0 {
		// Lost the consume race: another request used the token first.
		return "", ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		s.q(`UPDATE users SET password_hash=%s WHERE id=%s`, 2), newPasswordHash, t.UserID); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return t.UserID, nil
}

func (s *SQLStore) InsertAudit(ctx context.Context, e models.AuditEntry) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO audit_log(id,actor_user_id,action,table_name,record_id,old_values,new_values,created_at) VALUES(%s,%s,%s,%s,%s,%s,%s,%s)`, 8),
		e.ID, e.ActorUserID, string(e.Action), e.TableName, e.RecordID, e.OldValues, e.NewValues, e.CreatedAt,
	)
	return err
}

func (s *SQLStore) ListAudit(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT id,actor_user_id,action,table_name,record_id,old_values,new_values,created_at FROM audit_log ORDER BY created_at DESC LIMIT %s OFFSET %s`, 2),
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]models.AuditEntry, 0, limit)
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorUserID, &e.Action, &e.TableName, &e.RecordID, &e.OldValues, &e.NewValues, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func isDuplicateErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
