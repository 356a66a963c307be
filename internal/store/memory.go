package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"careermatrix/internal/models"
)

// MemoryStore backs demo mode. All maps are guarded by one mutex; the
// dataset is small enough that copy-on-read is cheaper than finer locks.
type MemoryStore struct {
	mu             sync.RWMutex
	users          map[string]models.User
	resetTokens    map[string]models.PasswordResetToken // keyed by token hash
	audit          []models.AuditEntry
	departments    map[string]models.Department
	skills         map[string]models.Skill
	demonstrations map[string]models.SkillDemonstration
	roles          map[string]models.JobRole
	requirements   map[string]map[string]int // roleID -> skillID -> level
	assessments    map[string]models.Assessment
	oneOnOnes      map[string]models.OneOnOne
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		users:          map[string]models.User{},
		resetTokens:    map[string]models.PasswordResetToken{},
		departments:    map[string]models.Department{},
		skills:         map[string]models.Skill{},
		demonstrations: map[string]models.SkillDemonstration{},
		roles:          map[string]models.JobRole{},
		requirements:   map[string]map[string]int{},
		assessments:    map[string]models.Assessment{},
		oneOnOnes:      map[string]models.OneOnOne{},
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) CreateUser(ctx context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range m.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return ErrConflict
		}
	}
	existing.Email = u.Email
	existing.Name = u.Name
	existing.Role = u.Role
	m.users[u.ID] = existing
	return nil
}

func (m *MemoryStore) SetUserActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Active = active
	m.users[id] = u
	return nil
}

func (m *MemoryStore) UpdateUserPasswordHash(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	m.users[id] = u
	return nil
}

func (m *MemoryStore) CreatePasswordResetToken(ctx context.Context, t models.PasswordResetToken) error {
	m.mu.Lock()
	m.resetTokens[t.TokenHash] = t
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetPasswordResetToken(ctx context.Context, tokenHash string) (models.PasswordResetToken, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.resetTokens[tokenHash]
	if !ok {
		return models.PasswordResetToken{}, ErrNotFound
	}
	return t, nil
}

func (m *MemoryStore) ConsumeResetTokenAndSetPassword(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.resetTokens[tokenHash]
	if !ok || t.UsedAt != nil || !t.ExpiresAt.After(now) {
		return "", ErrNotFound
	}
	u, ok := m.users[t.UserID]
	if !ok {
		return "", ErrNotFound
	}
	used := now
	t.UsedAt = &used
	m.resetTokens[tokenHash] = t
	u.PasswordHash = newPasswordHash
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *MemoryStore) InsertAudit(ctx context.Context, e models.AuditEntry) error {
	m.mu.Lock()
	m.audit = append(m.audit, e)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ListAudit(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]models.AuditEntry, len(m.audit))
	copy(entries, m.audit)
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	if offset >= len(entries) {
		return []models.AuditEntry{}, nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *MemoryStore) CreateDepartment(ctx context.Context, d models.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.departments {
		if strings.EqualFold(existing.Name, d.Name) {
			return ErrConflict
		}
	}
	m.departments[d.ID] = d
	return nil
}

func (m *MemoryStore) GetDepartment(ctx context.Context, id string) (models.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.departments[id]
	if !ok {
		return models.Department{}, ErrNotFound
	}
	return d, nil
}

func (m *MemoryStore) ListDepartments(ctx context.Context) ([]models.Department, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Department, 0, len(m.departments))
	for _, d := range m.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) UpdateDepartment(ctx context.Context, d models.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.departments[d.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = d.Name
	m.departments[d.ID] = existing
	return nil
}

func (m *MemoryStore) DeleteDepartment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.departments[id]; !ok {
		return ErrNotFound
	}
	delete(m.departments, id)
	return nil
}

func (m *MemoryStore) CreateSkill(ctx context.Context, sk models.Skill) error {
	m.mu.Lock()
	m.skills[sk.ID] = sk
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetSkill(ctx context.Context, id string) (models.Skill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sk, ok := m.skills[id]
	if !ok {
		return models.Skill{}, ErrNotFound
	}
	return sk, nil
}

func (m *MemoryStore) ListSkillsByDepartment(ctx context.Context, departmentID string) ([]models.Skill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Skill
	for _, sk := range m.skills {
		if sk.DepartmentID == departmentID {
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Name < b.Name
	})
	return out, nil
}

func (m *MemoryStore) UpdateSkill(ctx context.Context, sk models.Skill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.skills[sk.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = sk.Name
	existing.Category = sk.Category
	existing.Description = sk.Description
	existing.SortOrder = sk.SortOrder
	m.skills[sk.ID] = existing
	return nil
}

func (m *MemoryStore) DeleteSkill(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.skills[id]; !ok {
		return ErrNotFound
	}
	delete(m.skills, id)
	return nil
}

func (m *MemoryStore) CreateDemonstration(ctx context.Context, d models.SkillDemonstration) error {
	m.mu.Lock()
	m.demonstrations[d.ID] = d
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetDemonstration(ctx context.Context, id string) (models.SkillDemonstration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.demonstrations[id]
	if !ok {
		return models.SkillDemonstration{}, ErrNotFound
	}
	return d, nil
}

func (m *MemoryStore) ListDemonstrationsBySkill(ctx context.Context, skillID string) ([]models.SkillDemonstration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.SkillDemonstration
	for _, d := range m.demonstrations {
		if d.SkillID == skillID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (m *MemoryStore) UpdateDemonstration(ctx context.Context, d models.SkillDemonstration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.demonstrations[d.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Level = d.Level
	existing.Description = d.Description
	m.demonstrations[d.ID] = existing
	return nil
}

func (m *MemoryStore) DeleteDemonstration(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.demonstrations[id]; !ok {
		return ErrNotFound
	}
	delete(m.demonstrations, id)
	return nil
}

func (m *MemoryStore) CreateJobRole(ctx context.Context, r models.JobRole) error {
	m.mu.Lock()
	m.roles[r.ID] = r
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetJobRole(ctx context.Context, id string) (models.JobRole, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.roles[id]
	if !ok {
		return models.JobRole{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) ListJobRoles(ctx context.Context, departmentID string) ([]models.JobRole, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.JobRole
	for _, r := range m.roles {
		if departmentID == "" || r.DepartmentID == departmentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *MemoryStore) UpdateJobRole(ctx context.Context, r models.JobRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.roles[r.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = r.Title
	existing.Track = r.Track
	existing.Summary = r.Summary
	m.roles[r.ID] = existing
	return nil
}

func (m *MemoryStore) DeleteJobRole(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.roles[id]; !ok {
		return ErrNotFound
	}
	delete(m.roles, id)
	delete(m.requirements, id)
	return nil
}

func (m *MemoryStore) UpsertRoleRequirement(ctx context.Context, req models.RoleSkillRequirement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	levels, ok := m.requirements[req.RoleID]
	if !ok {
		levels = map[string]int{}
		m.requirements[req.RoleID] = levels
	}
	levels[req.SkillID] = req.RequiredLevel
	return nil
}

func (m *MemoryStore) ListRoleRequirements(ctx context.Context, roleID string) ([]models.RoleSkillRequirement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.RoleSkillRequirement
	for skillID, level := range m.requirements[roleID] {
		out = append(out, models.RoleSkillRequirement{RoleID: roleID, SkillID: skillID, RequiredLevel: level})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillID < out[j].SkillID })
	return out, nil
}

func (m *MemoryStore) CreateAssessment(ctx context.Context, a models.Assessment) error {
	m.mu.Lock()
	items := make([]models.AssessmentItem, len(a.Items))
	copy(items, a.Items)
	a.Items = items
	m.assessments[a.ID] = a
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetAssessment(ctx context.Context, id string) (models.Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assessments[id]
	if !ok {
		return models.Assessment{}, ErrNotFound
	}
	return a, nil
}

func (m *MemoryStore) ListAssessmentsByUser(ctx context.Context, userID string) ([]models.Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Assessment
	for _, a := range m.assessments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateOneOnOne(ctx context.Context, o models.OneOnOne) error {
	m.mu.Lock()
	m.oneOnOnes[o.ID] = o
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetOneOnOne(ctx context.Context, id string) (models.OneOnOne, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.oneOnOnes[id]
	if !ok {
		return models.OneOnOne{}, ErrNotFound
	}
	return o, nil
}

func (m *MemoryStore) ListOneOnOnesForUser(ctx context.Context, userID string) ([]models.OneOnOne, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.OneOnOne
	for _, o := range m.oneOnOnes {
		if o.UserID == userID || o.ManagerID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return out, nil
}

func (m *MemoryStore) CompleteOneOnOne(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.oneOnOnes[id]
	if !ok || o.CompletedAt != nil {
		return ErrNotFound
	}
	o.CompletedAt = &at
	m.oneOnOnes[id] = o
	return nil
}
