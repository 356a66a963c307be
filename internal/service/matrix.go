package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"careermatrix/internal/models"
	"careermatrix/internal/store"
)

const maxSkillLevel = 5

// Matrix is a department's skill matrix: skills grouped by category,
// with each role's required level per skill.
type Matrix struct {
	Department models.Department `json:"department"`
	Roles      []models.JobRole  `json:"roles"`
	Categories []MatrixCategory  `json:"categories"`
}

type MatrixCategory struct {
	Name   string        `json:"name"`
	Skills []MatrixSkill `json:"skills"`
}

type MatrixSkill struct {
	Skill  models.Skill   `json:"skill"`
	Levels map[string]int `json:"levels"` // role id -> required level
}

func (s *Service) DepartmentMatrix(ctx context.Context, departmentID string) (Matrix, error) {
	dept, err := s.st.GetDepartment(ctx, departmentID)
	if err != nil {
		return Matrix{}, err
	}
	skills, err := s.st.ListSkillsByDepartment(ctx, departmentID)
	if err != nil {
		return Matrix{}, err
	}
	roles, err := s.st.ListJobRoles(ctx, departmentID)
	if err != nil {
		return Matrix{}, err
	}
	levelsBySkill := map[string]map[string]int{}
	for _, role := range roles {
		reqs, err := s.st.ListRoleRequirements(ctx, role.ID)
		if err != nil {
			return Matrix{}, err
		}
		for _, req := range reqs {
			if levelsBySkill[req.SkillID] == nil {
				levelsBySkill[req.SkillID] = map[string]int{}
			}
			levelsBySkill[req.SkillID][role.ID] = req.RequiredLevel
		}
	}

	m := Matrix{Department: dept, Roles: roles}
	var current *MatrixCategory
	for _, sk := range skills {
		if current == nil || current.Name != sk.Category {
			m.Categories = append(m.Categories, MatrixCategory{Name: sk.Category})
			current = &m.Categories[len(m.Categories)-1]
		}
		levels := levelsBySkill[sk.ID]
		if levels == nil {
			levels = map[string]int{}
		}
		current.Skills = append(current.Skills, MatrixSkill{Skill: sk, Levels: levels})
	}
	return m, nil
}

// RoleDetail is a job role with its skill requirements resolved.
type RoleDetail struct {
	Role   models.JobRole    `json:"role"`
	Skills []RoleDetailSkill `json:"skills"`
}

type RoleDetailSkill struct {
	Skill         models.Skill `json:"skill"`
	RequiredLevel int          `json:"required_level"`
}

func (s *Service) RoleDetail(ctx context.Context, roleID string) (RoleDetail, error) {
	role, err := s.st.GetJobRole(ctx, roleID)
	if err != nil {
		return RoleDetail{}, err
	}
	reqs, err := s.st.ListRoleRequirements(ctx, roleID)
	if err != nil {
		return RoleDetail{}, err
	}
	out := RoleDetail{Role: role}
	for _, req := range reqs {
		sk, err := s.st.GetSkill(ctx, req.SkillID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return RoleDetail{}, err
		}
		out.Skills = append(out.Skills, RoleDetailSkill{Skill: sk, RequiredLevel: req.RequiredLevel})
	}
	return out, nil
}

// RoleComparison lines two roles up skill by skill.
type RoleComparison struct {
	RoleA models.JobRole      `json:"role_a"`
	RoleB models.JobRole      `json:"role_b"`
	Rows  []RoleComparisonRow `json:"rows"`
}

type RoleComparisonRow struct {
	Skill  models.Skill `json:"skill"`
	LevelA int          `json:"level_a"`
	LevelB int          `json:"level_b"`
	Delta  int          `json:"delta"`
}

func (s *Service) CompareRoles(ctx context.Context, roleAID, roleBID string) (RoleComparison, error) {
	a, err := s.RoleDetail(ctx, roleAID)
	if err != nil {
		return RoleComparison{}, err
	}
	b, err := s.RoleDetail(ctx, roleBID)
	if err != nil {
		return RoleComparison{}, err
	}
	cmp := RoleComparison{RoleA: a.Role, RoleB: b.Role}
	levelsB := map[string]int{}
	skillsB := map[string]models.Skill{}
	for _, sk := range b.Skills {
		levelsB[sk.Skill.ID] = sk.RequiredLevel
		skillsB[sk.Skill.ID] = sk.Skill
	}
	seen := map[string]bool{}
	for _, sk := range a.Skills {
		levelB := levelsB[sk.Skill.ID]
		cmp.Rows = append(cmp.Rows, RoleComparisonRow{
			Skill:  sk.Skill,
			LevelA: sk.RequiredLevel,
			LevelB: levelB,
			Delta:  levelB - sk.RequiredLevel,
		})
		seen[sk.Skill.ID] = true
	}
	for _, sk := range b.Skills {
		if seen[sk.Skill.ID] {
			continue
		}
		cmp.Rows = append(cmp.Rows, RoleComparisonRow{
			Skill:  sk.Skill,
			LevelB: sk.RequiredLevel,
			Delta:  sk.RequiredLevel,
		})
	}
	return cmp, nil
}

// AssessmentResult is a stored self-assessment scored against the
// target role's requirements.
type AssessmentResult struct {
	Assessment models.Assessment `json:"assessment"`
	Role       models.JobRole    `json:"role"`
	Rows       []AssessmentRow   `json:"rows"`
	MetCount   int               `json:"met_count"`
	TotalCount int               `json:"total_count"`
}

type AssessmentRow struct {
	Skill         models.Skill `json:"skill"`
	RequiredLevel int          `json:"required_level"`
	SelfLevel     int          `json:"self_level"`
	Gap           int          `json:"gap"` // positive when below the requirement
}

func (s *Service) SubmitAssessment(ctx context.Context, userID, roleID string, items []models.AssessmentItem) (AssessmentResult, error) {
	if _, err := s.st.GetJobRole(ctx, roleID); err != nil {
		return AssessmentResult{}, err
	}
	seen := map[string]bool{}
	for _, item := range items {
		if item.SelfLevel < 0 || item.SelfLevel > maxSkillLevel {
			return AssessmentResult{}, fmt.Errorf("self level must be between 0 and %d", maxSkillLevel)
		}
		if seen[item.SkillID] {
			return AssessmentResult{}, fmt.Errorf("duplicate skill %s", item.SkillID)
		}
		seen[item.SkillID] = true
	}
	a := models.Assessment{
		ID:        uuid.NewString(),
		UserID:    userID,
		RoleID:    roleID,
		Items:     items,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.st.CreateAssessment(ctx, a); err != nil {
		return AssessmentResult{}, err
	}
	return s.scoreAssessment(ctx, a)
}

func (s *Service) GetAssessment(ctx context.Context, userID, assessmentID string) (AssessmentResult, error) {
	a, err := s.st.GetAssessment(ctx, assessmentID)
	if err != nil {
		return AssessmentResult{}, err
	}
	if a.UserID != userID {
		return AssessmentResult{}, ErrForbidden
	}
	return s.scoreAssessment(ctx, a)
}

func (s *Service) ListMyAssessments(ctx context.Context, userID string) ([]models.Assessment, error) {
	return s.st.ListAssessmentsByUser(ctx, userID)
}

func (s *Service) scoreAssessment(ctx context.Context, a models.Assessment) (AssessmentResult, error) {
	detail, err := s.RoleDetail(ctx, a.RoleID)
	if err != nil {
		return AssessmentResult{}, err
	}
	selfLevels := map[string]int{}
	for _, item := range a.Items {
		selfLevels[item.SkillID] = item.SelfLevel
	}
	out := AssessmentResult{Assessment: a, Role: detail.Role}
	for _, req := range detail.Skills {
		self := selfLevels[req.Skill.ID]
		gap := req.RequiredLevel - self
		if gap < 0 {
			gap = 0
		}
		out.Rows = append(out.Rows, AssessmentRow{
			Skill:         req.Skill,
			RequiredLevel: req.RequiredLevel,
			SelfLevel:     self,
			Gap:           gap,
		})
		out.TotalCount++
		if gap == 0 {
			out.MetCount++
		}
	}
	return out, nil
}

func (s *Service) CreateOneOnOne(ctx context.Context, actor models.User, userID string, scheduledAt time.Time, notes string) (models.OneOnOne, error) {
	managerID := actor.ID
	if userID == "" || userID == actor.ID {
		// A report booking their own one-on-one needs no partner field;
		// the manager pairing is left to the managing side.
		userID = actor.ID
	} else if actor.Role != models.RoleManager && actor.Role != models.RoleAdmin {
		return models.OneOnOne{}, ErrForbidden
	}
	if _, err := s.st.GetUserByID(ctx, userID); err != nil {
		return models.OneOnOne{}, err
	}
	o := models.OneOnOne{
		ID:          uuid.NewString(),
		UserID:      userID,
		ManagerID:   managerID,
		ScheduledAt: scheduledAt.UTC(),
		Notes:       notes,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.st.CreateOneOnOne(ctx, o); err != nil {
		return models.OneOnOne{}, err
	}
	return o, nil
}

func (s *Service) ListOneOnOnes(ctx context.Context, userID string) ([]models.OneOnOne, error) {
	return s.st.ListOneOnOnesForUser(ctx, userID)
}

// CompleteOneOnOne marks a meeting done; only a participant may do so.
func (s *Service) CompleteOneOnOne(ctx context.Context, actorID, id string) (models.OneOnOne, error) {
	o, err := s.st.GetOneOnOne(ctx, id)
	if err != nil {
		return models.OneOnOne{}, err
	}
	if o.UserID != actorID && o.ManagerID != actorID {
		return models.OneOnOne{}, ErrForbidden
	}
	if err := s.st.CompleteOneOnOne(ctx, id, time.Now().UTC()); err != nil {
		return models.OneOnOne{}, err
	}
	return s.st.GetOneOnOne(ctx, id)
}
