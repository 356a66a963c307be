package models

import "time"

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a time-bounded authorization grant. User is a denormalized
// snapshot taken at login so request verification does not need a join.
type Session struct {
	ID        string
	UserID    string
	User      User
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

type AuditEntry struct {
	ID          string      `json:"id"`
	ActorUserID string      `json:"actor_user_id"`
	Action      AuditAction `json:"action"`
	TableName   string      `json:"table_name"`
	RecordID    string      `json:"record_id"`
	OldValues   string      `json:"old_values,omitempty"`
	NewValues   string      `json:"new_values,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Skill struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"department_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Description  string    `json:"description,omitempty"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// SkillDemonstration is a concrete example of what exercising a skill at
// a given level looks like, shown next to the matrix cell.
type SkillDemonstration struct {
	ID          string    `json:"id"`
	SkillID     string    `json:"skill_id"`
	Level       int       `json:"level"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type JobRole struct {
	ID           string    `json:"id"`
	DepartmentID string    `json:"department_id"`
	Title        string    `json:"title"`
	Track        string    `json:"track,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleSkillRequirement maps one skill of a job role to the level the
// role expects, on a 0..5 scale.
type RoleSkillRequirement struct {
	RoleID        string `json:"role_id"`
	SkillID       string `json:"skill_id"`
	RequiredLevel int    `json:"required_level"`
}

type Assessment struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	RoleID    string           `json:"role_id"`
	Items     []AssessmentItem `json:"items,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type AssessmentItem struct {
	SkillID   string `json:"skill_id"`
	SelfLevel int    `json:"self_level"`
}

type OneOnOne struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ManagerID   string     `json:"manager_id"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Notes       string     `json:"notes,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
