package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"careermatrix/internal/audit"
	"careermatrix/internal/auth"
	"careermatrix/internal/config"
	"careermatrix/internal/models"
	"careermatrix/internal/notify"
	"careermatrix/internal/session"
	"careermatrix/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidResetToken covers expired, consumed, and unknown tokens
	// with identical wording so callers cannot distinguish them.
	ErrInvalidResetToken = errors.New("invalid or expired token")
	ErrForbidden         = errors.New("forbidden")
)

type Service struct {
	cfg      config.Config
	st       store.Store
	sessions *session.Manager
	sender   notify.Sender
	recorder *audit.Recorder
}

func New(cfg config.Config, st store.Store, sessions *session.Manager, sender notify.Sender) *Service {
	if sender == nil {
		sender = notify.LogSender{}
	}
	return &Service{cfg: cfg, st: st, sessions: sessions, sender: sender, recorder: audit.NewRecorder(st)}
}

func (s *Service) Store() store.Store         { return s.st }
func (s *Service) Sessions() *session.Manager { return s.sessions }

func (s *Service) ValidatePassword(pw string) error {
	if len(pw) < s.cfg.PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters", s.cfg.PasswordMinLength)
	}
	if len(pw) > s.cfg.PasswordMaxLength {
		return fmt.Errorf("password must be at most %d characters", s.cfg.PasswordMaxLength)
	}
	return nil
}

// Login verifies credentials and grants a session. Unknown email, wrong
// password, and deactivated account all map to ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, models.User, error) {
	u, err := s.st.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// Full-cost comparison against a throwaway hash, so a missing
		// account is not measurably faster than a wrong password.
		auth.BurnVerify(password)
		return "", models.User{}, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return "", models.User{}, ErrInvalidCredentials
	}
	if !u.Active {
		return "", models.User{}, ErrInvalidCredentials
	}
	id, err := s.sessions.Create(ctx, u)
	if err != nil {
		return "", models.User{}, err
	}
	return id, u, nil
}

// Logout deletes the session. Best effort: an unknown id or unreachable
// durable store still reports success.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		log.Printf("logout_delete_failed err=%q", err.Error())
	}
}

// RequestPasswordReset issues a reset token when the email matches an
// active user. The caller always gets the same acknowledgment either
// way; existence is never leaked.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.st.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || !u.Active {
		return nil
	}
	raw, hash, err := auth.NewOpaqueToken()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	t := models.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(s.cfg.ResetTokenLifetime()),
		CreatedAt: now,
	}
	if err := s.st.CreatePasswordResetToken(ctx, t); err != nil {
		return err
	}
	return s.sender.SendPasswordReset(ctx, u.Email, raw)
}

// VerifyResetToken reports whether the token is currently redeemable
// (issued, unexpired, unconsumed) without consuming it.
func (s *Service) VerifyResetToken(ctx context.Context, rawToken string) bool {
	if rawToken == "" {
		return false
	}
	t, err := s.st.GetPasswordResetToken(ctx, auth.HashToken(rawToken))
	if err != nil {
		return false
	}
	return t.UsedAt == nil && t.ExpiresAt.After(time.Now().UTC())
}

// ConfirmPasswordReset redeems the token and sets the new password in
// one atomic step; the token can never authorize a second change.
func (s *Service) ConfirmPasswordReset(ctx context.Context, rawToken, newPassword string) (string, error) {
	if err := s.ValidatePassword(newPassword); err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", err
	}
	userID, err := s.st.ConsumeResetTokenAndSetPassword(ctx, auth.HashToken(rawToken), hash, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidResetToken
		}
		return "", err
	}
	// Snapshot records nothing sensitive; the hash never leaves the store.
	s.recorder.Record(ctx, userID, models.AuditUpdate, "users", userID, nil, map[string]string{"event": "password_reset"})
	return userID, nil
}

// ChangePassword lets an authenticated user rotate their own password.
func (s *Service) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	u, err := s.st.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.st.UpdateUserPasswordHash(ctx, userID, hash)
}
