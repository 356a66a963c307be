package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"careermatrix/internal/audit"
	"careermatrix/internal/auth"
	"careermatrix/internal/models"
)

// Admin wraps the service with the audit recorder; every state-changing
// operation here records an entry (best effort).
type Admin struct {
	svc      *Service
	recorder *audit.Recorder
}

func NewAdmin(svc *Service, recorder *audit.Recorder) *Admin {
	return &Admin{svc: svc, recorder: recorder}
}

func (a *Admin) CreateUser(ctx context.Context, actorID, email, name string, role models.Role, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.User{}, fmt.Errorf("email is required")
	}
	if !role.Valid() {
		return models.User{}, fmt.Errorf("invalid role %q", role)
	}
	if err := a.svc.ValidatePassword(password); err != nil {
		return models.User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.svc.st.CreateUser(ctx, u); err != nil {
		return models.User{}, err
	}
	a.recorder.Record(ctx, actorID, models.AuditCreate, "users", u.ID, nil, u)
	return u, nil
}

func (a *Admin) UpdateUser(ctx context.Context, actorID string, u models.User) (models.User, error) {
	if !u.Role.Valid() {
		return models.User{}, fmt.Errorf("invalid role %q", u.Role)
	}
	old, err := a.svc.st.GetUserByID(ctx, u.ID)
	if err != nil {
		return models.User{}, err
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := a.svc.st.UpdateUser(ctx, u); err != nil {
		return models.User{}, err
	}
	updated, err := a.svc.st.GetUserByID(ctx, u.ID)
	if err != nil {
		return models.User{}, err
	}
	a.recorder.Record(ctx, actorID, models.AuditUpdate, "users", u.ID, old, updated)
	return updated, nil
}

// SetUserActive soft-deactivates or reactivates. Users are never
// physically deleted.
func (a *Admin) SetUserActive(ctx context.Context, actorID, userID string, active bool) error {
	old, err := a.svc.st.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := a.svc.st.SetUserActive(ctx, userID, active); err != nil {
		return err
	}
	updated := old
	updated.Active = active
	a.recorder.Record(ctx, actorID, models.AuditUpdate, "users", userID, old, updated)
	return nil
}

func (a *Admin) ResetUserPassword(ctx context.Context, actorID, userID, newPassword string) error {
	if err := a.svc.ValidatePassword(newPassword); err != nil {
		return err
	}
	if _, err := a.svc.st.GetUserByID(ctx, userID); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := a.svc.st.UpdateUserPasswordHash(ctx, userID, hash); err != nil {
		return err
	}
	a.recorder.Record(ctx, actorID, models.AuditUpdate, "users", userID, nil, map[string]string{"password": "rotated"})
	return nil
}

func (a *Admin) ListUsers(ctx context.Context) ([]models.User, error) {
	return a.svc.st.ListUsers(ctx)
}

func (a *Admin) CreateDepartment(ctx context.Context, actorID, name string) (models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Department{}, errors.New("name is required")
	}
	d := models.Department{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	if err := a.svc.st.CreateDepartment(ctx, d); err != nil {
		return models.Department{}, err
	}
	a.recorder.Record(ctx, actorID, models.AuditCreate, "departments", d.ID, nil, d)
	return d, nil
}

func (a *Admin) UpdateDepartment(ctx context.Context, actorID string, d models.Department) (models.Department, error) {
	old, err := a.svc.st.GetDepartment(ctx, d.ID)
	if err != nil {
		return models.Department{}, err
	}
	if err := a.svc.st.UpdateDepartment(ctx, d); err != nil {
		return models.Department{}, err
	}
	updated, err := a.svc.st.GetDepartment(ctx, d.ID)
	if err != nil {
		return models.Department{}, err
	}
	a.recorder.Record(ctx, actorID, models.AuditUpdate, "departments", d.ID, old, updated)
	return updated, nil
}

func (a *Admin) DeleteDepartment(ctx context.Context, actorID, id string) error {
	old, err := a.svc.st.GetDepartment(ctx, id)
	if err != nil {
		return err
	}
	if err := a.svc.st.DeleteDepartment(ctx, id); err != nil {
		return err
	}
	a.recorder.Record(ctx, actorID, models.AuditDelete, "departments", id, old, nil)
	return nil
}

func (a *Admin) CreateSkill(ctx context.Context, actorID string, sk models.Skill) (models.Skill, error) {
	if strings.TrimSpace(sk.Name) == "" {
		return models.Skill{}, errors.New("name is required")
	}
	if _, err := a.svc.st.GetDepartment(ctx, sk.DepartmentID); err != nil {
		return models.Skill{}, err
	}
	sk.ID = uuid.NewString()
	sk.CreatedAt = time.Now().UTC()
	if err := a.svc.st.CreateSkill(ctx, sk); err != nil {
		return models.Skill{}, err
	}
	a.recorder.Record(ctx, actorID, models.AuditCreate, "skills", sk.ID, nil, sk)
	return sk, nil
}

func (a *Admin) UpdateSkill(ctx context.Context, actorID string, sk models.Skill) (models.Skill, error) {
	old, err := a.svc.st.GetSkill(ctx, sk.ID)
	if err != nil {
		return models.Skill{}, err
	}
	if err := a.svc.st.UpdateSkill(ctx, sk); err != nil {
		return models.Skill{}, err
	}
	updated, err := a.svc.st.GetSkill(ctx, sk.ID)
	if err != nil {
		return models.Skill{}, err
	}
	a.recorder.Record(ctx, actorID, models.AuditUpdate, "skills", sk.ID, old, updated)
	return updated, nil
}

func (a *Admin) DeleteSkill(ctx context.Context, actorID, id string) error {
	old, err := a.svc.st.GetSkill(ctx, id)
	if err != nil {
		return err
	}
	if err := a.svc.st.DeleteSkill(ctx, id); err != nil {
		return err
	}
	a.recorder.Record(ctx, actorID, models.AuditDelete, "skills", id, old, nil)
	return nil
}

func (a *Admin) CreateDemonstration(ctx context.Context, actorID string, d models.SkillDemonstration) (models.SkillDemonstration, error) {
	if d.Level < 0 || d.Level > maxSkillLevel {
		return models.SkillDemonstration{}, fmt.Errorf("level must be between 0 and %d", maxSkillLevel)
	}
	if _, err := a.svc.st.GetSkill(ctx, d.SkillID); err != nil {
		return models.SkillDemonstration{}, err
	}
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	if err := a.svc.st.CreateDemonstration(ctx, d); err != nil {
		return models.SkillDemonstration{}, err
	}
	a.recorder.Record(ctx, actorID, models.AuditCreate, "skill_demonstrations", d.ID, nil, d)
	return d, nil
}

func (a *Admin) UpdateDemonstration(ctx context.Context, actorID string, d models.SkillDemonstration) (models.SkillDemonstration, error) {
	old, err := a.svc.st.GetDemonstration(ctx, d.ID)
	if err != nil {
		return models.SkillDemonstration{}, err
	}
	if err := a.svc.st.UpdateDemonstration(ctx, d); err != nil {
		return models.SkillDemonstration{}, err
	}
	updated, err := a.svc.st.GetDemonstration(ctx, d.ID)
	if err != nil {
		return models.SkillDemonstration{}, err
	}
	a.recorder.Record(ctx, actorID, models.AuditUpdate, "skill_demonstrations", d.ID, old, updated)
	return updated, nil
}

func (a *Admin) DeleteDemonstration(ctx context.Context, actorID, id string) error {
	old, err := a.svc.st.GetDemonstration(ctx, id)
	if err != nil {
		return err
	}
	if err := a.svc.st.DeleteDemonstration(ctx, id); err != nil {
		return err
	}
	a.recorder.Record(ctx, actorID, models.AuditDelete, "skill_demonstrations", id, old, nil)
	return nil
}

func (a *Admin) CreateJobRole(ctx context.Context, actorID string, r models.JobRole) (models.JobRole, error) {
	if strings.TrimSpace(r.Title) == "" {
		return models.JobRole{}, errors.New("title is required")
	}
	if _, err := a.svc.st.GetDepartment(ctx, r.DepartmentID); err != nil {
		return models.JobRole{}, err
	}
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().UTC()
	if err := a.svc.st.CreateJobRole(ctx, r); err != nil {
		return models.JobRole{}, err
	}
	a.recorder.Record(ctx, actorID, models.AuditCreate, "job_roles", r.ID, nil, r)
	return r, nil
}

func (a *Admin) UpdateJobRole(ctx context.Context, actorID string, r models.JobRole) (models.JobRole, error) {
	old, err := a.svc.st.GetJobRole(ctx, r.ID)
	if err != nil {
		return models.JobRole{}, err
	}
	if err := a.svc.st.UpdateJobRole(ctx, r); err != nil {
		return models.JobRole{}, err
	}
	updated, err := a.svc.st.GetJobRole(ctx, r.ID)
	if err != nil {
		return models.JobRole{}, err
	}
	a.recorder.Record(ctx, actorID, models.AuditUpdate, "job_roles", r.ID, old, updated)
	return updated, nil
}

func (a *Admin) DeleteJobRole(ctx context.Context, actorID, id string) error {
	old, err := a.svc.st.GetJobRole(ctx, id)
	if err != nil {
		return err
	}
	if err := a.svc.st.DeleteJobRole(ctx, id); err != nil {
		return err
	}
	a.recorder.Record(ctx, actorID, models.AuditDelete, "job_roles", id, old, nil)
	return nil
}

func (a *Admin) SetRoleRequirement(ctx context.Context, actorID string, req models.RoleSkillRequirement) error {
	if req.RequiredLevel < 0 || req.RequiredLevel > maxSkillLevel {
		return fmt.Errorf("required level must be between 0 and %d", maxSkillLevel)
	}
	if _, err := a.svc.st.GetJobRole(ctx, req.RoleID); err != nil {
		return err
	}
	if _, err := a.svc.st.GetSkill(ctx, req.SkillID); err != nil {
		return err
	}
	if err := a.svc.st.UpsertRoleRequirement(ctx, req); err != nil {
		return err
	}
	a.recorder.Record(ctx, actorID, models.AuditUpdate, "role_skill_requirements", req.RoleID, nil, req)
	return nil
}

func (a *Admin) ListAudit(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return a.svc.st.ListAudit(ctx, limit, offset)
}
