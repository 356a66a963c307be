package store

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"careermatrix/internal/auth"
	"careermatrix/internal/models"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "demo-password"

// NewDemo returns a memory store seeded with a minimal dataset so the
// application is browsable without a database.
func NewDemo() *MemoryStore {
	m := NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		log.Printf("demo_seed_failed err=%q", err.Error())
		return m
	}

	admin := models.User{ID: uuid.NewString(), Email: "admin@demo.local", Name: "Demo Admin", Role: models.RoleAdmin, PasswordHash: hash, Active: true, CreatedAt: now}
	manager := models.User{ID: uuid.NewString(), Email: "manager@demo.local", Name: "Demo Manager", Role: models.RoleManager, PasswordHash: hash, Active: true, CreatedAt: now}
	user := models.User{ID: uuid.NewString(), Email: "user@demo.local", Name: "Demo User", Role: models.RoleUser, PasswordHash: hash, Active: true, CreatedAt: now}
	for _, u := range []models.User{admin, manager, user} {
		_ = m.CreateUser(ctx, u)
	}

	eng := models.Department{ID: uuid.NewString(), Name: "Engineering", CreatedAt: now}
	_ = m.CreateDepartment(ctx, eng)

	skills := []models.Skill{
		{ID: uuid.NewString(), DepartmentID: eng.ID, Name: "Go", Category: "Technical", SortOrder: 1, CreatedAt: now},
		{ID: uuid.NewString(), DepartmentID: eng.ID, Name: "System Design", Category: "Technical", SortOrder: 2, CreatedAt: now},
		{ID: uuid.NewString(), DepartmentID: eng.ID, Name: "Mentoring", Category: "Leadership", SortOrder: 1, CreatedAt: now},
		{ID: uuid.NewString(), DepartmentID: eng.ID, Name: "Written Communication", Category: "Communication", SortOrder: 1, CreatedAt: now},
	}
	for _, sk := range skills {
		_ = m.CreateSkill(ctx, sk)
	}
	_ = m.CreateDemonstration(ctx, models.SkillDemonstration{
		ID: uuid.NewString(), SkillID: skills[0].ID, Level: 3,
		Description: "Owns a production Go service end to end, including reviews and on-call.",
		CreatedAt:   now,
	})

	junior := models.JobRole{ID: uuid.NewString(), DepartmentID: eng.ID, Title: "Engineer I", Track: "IC", Summary: "Entry-level engineer.", CreatedAt: now}
	senior := models.JobRole{ID: uuid.NewString(), DepartmentID: eng.ID, Title: "Senior Engineer", Track: "IC", Summary: "Independent project ownership.", CreatedAt: now}
	_ = m.CreateJobRole(ctx, junior)
	_ = m.CreateJobRole(ctx, senior)
	for i, sk := range skills {
		_ = m.UpsertRoleRequirement(ctx, models.RoleSkillRequirement{RoleID: junior.ID, SkillID: sk.ID, RequiredLevel: 1 + i%2})
		_ = m.UpsertRoleRequirement(ctx, models.RoleSkillRequirement{RoleID: senior.ID, SkillID: sk.ID, RequiredLevel: 3 + i%2})
	}

	_ = m.CreateOneOnOne(ctx, models.OneOnOne{
		ID: uuid.NewString(), UserID: user.ID, ManagerID: manager.ID,
		ScheduledAt: now.Add(72 * time.Hour), Notes: "Quarterly growth check-in.", CreatedAt: now,
	})
	return m
}
