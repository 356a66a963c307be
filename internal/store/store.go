// Package store persists users, the career matrix, assessments,
// one-on-ones, password-reset tokens and the audit log. Two
// implementations exist: SQL over the configured durable database and
// Memory, which backs demo mode when no DB_DSN is configured.
package store

import (
	"context"
	"errors"
	"time"

	"careermatrix/internal/models"
)

var ErrNotFound = errors.New("not found")
var ErrConflict = errors.New("conflict")

type Store interface {
	CreateUser(ctx context.Context, u models.User) error
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, u models.User) error
	SetUserActive(ctx context.Context, id string, active bool) error
	UpdateUserPasswordHash(ctx context.Context, id, passwordHash string) error

	CreatePasswordResetToken(ctx context.Context, t models.PasswordResetToken) error
	GetPasswordResetToken(ctx context.Context, tokenHash string) (models.PasswordResetToken, error)
	// ConsumeResetTokenAndSetPassword marks the token used and updates
	// the owning user's password hash in one atomic step. It fails with
	// ErrNotFound for unknown, expired, and already-used tokens alike.
	ConsumeResetTokenAndSetPassword(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (userID string, err error)

	InsertAudit(ctx context.Context, e models.AuditEntry) error
	ListAudit(ctx context.Context, limit, offset int) ([]models.AuditEntry, error)

	CreateDepartment(ctx context.Context, d models.Department) error
	GetDepartment(ctx context.Context, id string) (models.Department, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	UpdateDepartment(ctx context.Context, d models.Department) error
	DeleteDepartment(ctx context.Context, id string) error

	CreateSkill(ctx context.Context, s models.Skill) error
	GetSkill(ctx context.Context, id string) (models.Skill, error)
	ListSkillsByDepartment(ctx context.Context, departmentID string) ([]models.Skill, error)
	UpdateSkill(ctx context.Context, s models.Skill) error
	DeleteSkill(ctx context.Context, id string) error

	CreateDemonstration(ctx context.Context, d models.SkillDemonstration) error
	GetDemonstration(ctx context.Context, id string) (models.SkillDemonstration, error)
	ListDemonstrationsBySkill(ctx context.Context, skillID string) ([]models.SkillDemonstration, error)
	UpdateDemonstration(ctx context.Context, d models.SkillDemonstration) error
	DeleteDemonstration(ctx context.Context, id string) error

	CreateJobRole(ctx context.Context, r models.JobRole) error
	GetJobRole(ctx context.Context, id string) (models.JobRole, error)
	ListJobRoles(ctx context.Context, departmentID string) ([]models.JobRole, error)
	UpdateJobRole(ctx context.Context, r models.JobRole) error
	DeleteJobRole(ctx context.Context, id string) error
	UpsertRoleRequirement(ctx context.Context, req models.RoleSkillRequirement) error
	ListRoleRequirements(ctx context.Context, roleID string) ([]models.RoleSkillRequirement, error)

	CreateAssessment(ctx context.Context, a models.Assessment) error
	GetAssessment(ctx context.Context, id string) (models.Assessment, error)
	ListAssessmentsByUser(ctx context.Context, userID string) ([]models.Assessment, error)

	CreateOneOnOne(ctx context.Context, o models.OneOnOne) error
	GetOneOnOne(ctx context.Context, id string) (models.OneOnOne, error)
	ListOneOnOnesForUser(ctx context.Context, userID string) ([]models.OneOnOne, error)
	CompleteOneOnOne(ctx context.Context, id string, at time.Time) error

	Ping(ctx context.Context) error
}
