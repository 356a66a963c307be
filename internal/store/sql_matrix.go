package store

import (
	"context"
	"database/sql"

	"careermatrix/internal/models"
)

func (s *SQLStore) CreateDepartment(ctx context.Context, d models.Department) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO departments(id,name,created_at) VALUES(%s,%s,%s)`, 3),
		d.ID, d.Name, d.CreatedAt,
	)
	if err != nil && isDuplicateErr(err) {
		return ErrConflict
	}
	return err
}

func (s *SQLStore) GetDepartment(ctx context.Context, id string) (models.Department, error) {
	var d models.Department
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id,name,created_at FROM departments WHERE id=%s`, 1), id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Department{}, ErrNotFound
	}
	return d, err
}

func (s *SQLStore) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateDepartment(ctx context.Context, d models.Department) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE departments SET name=%s WHERE id=%s`, 2), d.Name, d.ID)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrConflict
		}
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) DeleteDepartment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM departments WHERE id=%s`, 1), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

const skillCols = `id,department_id,name,category,description,sort_order,created_at`

func (s *SQLStore) CreateSkill(ctx context.Context, sk models.Skill) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO skills(`+skillCols+`) VALUES(%s,%s,%s,%s,%s,%s,%s)`, 7),
		sk.ID, sk.DepartmentID, sk.Name, sk.Category, sk.Description, sk.SortOrder, sk.CreatedAt,
	)
	return err
}

func (s *SQLStore) GetSkill(ctx context.Context, id string) (models.Skill, error) {
	var sk models.Skill
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+skillCols+` FROM skills WHERE id=%s`, 1), id,
	).Scan(&sk.ID, &sk.DepartmentID, &sk.Name, &sk.Category, &sk.Description, &sk.SortOrder, &sk.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Skill{}, ErrNotFound
	}
	return sk, err
}

func (s *SQLStore) ListSkillsByDepartment(ctx context.Context, departmentID string) ([]models.Skill, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+skillCols+` FROM skills WHERE department_id=%s ORDER BY category, sort_order, name`, 1),
		departmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Skill
	for rows.Next() {
		var sk models.Skill
		if err := rows.Scan(&sk.ID, &sk.DepartmentID, &sk.Name, &sk.Category, &sk.Description, &sk.SortOrder, &sk.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sk)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateSkill(ctx context.Context, sk models.Skill) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE skills SET name=%s, category=%s, description=%s, sort_order=%s WHERE id=%s`, 5),
		sk.Name, sk.Category, sk.Description, sk.SortOrder, sk.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) DeleteSkill(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM skills WHERE id=%s`, 1), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) CreateDemonstration(ctx context.Context, d models.SkillDemonstration) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO skill_demonstrations(id,skill_id,level,description,created_at) VALUES(%s,%s,%s,%s,%s)`, 5),
		d.ID, d.SkillID, d.Level, d.Description, d.CreatedAt,
	)
	return err
}

func (s *SQLStore) GetDemonstration(ctx context.Context, id string) (models.SkillDemonstration, error) {
	var d models.SkillDemonstration
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id,skill_id,level,description,created_at FROM skill_demonstrations WHERE id=%s`, 1), id,
	).Scan(&d.ID, &d.SkillID, &d.Level, &d.Description, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return models.SkillDemonstration{}, ErrNotFound
	}
	return d, err
}

func (s *SQLStore) ListDemonstrationsBySkill(ctx context.Context, skillID string) ([]models.SkillDemonstration, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT id,skill_id,level,description,created_at FROM skill_demonstrations WHERE skill_id=%s ORDER BY level`, 1),
		skillID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.SkillDemonstration
	for rows.Next() {
		var d models.SkillDemonstration
		if err := rows.Scan(&d.ID, &d.SkillID, &d.Level, &d.Description, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateDemonstration(ctx context.Context, d models.SkillDemonstration) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE skill_demonstrations SET level=%s, description=%s WHERE id=%s`, 3),
		d.Level, d.Description, d.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) DeleteDemonstration(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM skill_demonstrations WHERE id=%s`, 1), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

const roleCols = `id,department_id,title,track,summary,created_at`

func (s *SQLStore) CreateJobRole(ctx context.Context, r models.JobRole) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO job_roles(`+roleCols+`) VALUES(%s,%s,%s,%s,%s,%s)`, 6),
		r.ID, r.DepartmentID, r.Title, r.Track, r.Summary, r.CreatedAt,
	)
	return err
}

func (s *SQLStore) GetJobRole(ctx context.Context, id string) (models.JobRole, error) {
	var r models.JobRole
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+roleCols+` FROM job_roles WHERE id=%s`, 1), id,
	).Scan(&r.ID, &r.DepartmentID, &r.Title, &r.Track, &r.Summary, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return models.JobRole{}, ErrNotFound
	}
	return r, err
}

func (s *SQLStore) ListJobRoles(ctx context.Context, departmentID string) ([]models.JobRole, error) {
	var rows *sql.Rows
	var err error
	if departmentID == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+roleCols+` FROM job_roles ORDER BY title`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			s.q(`SELECT `+roleCols+` FROM job_roles WHERE department_id=%s ORDER BY title`, 1), departmentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.JobRole
	for rows.Next() {
		var r models.JobRole
		if err := rows.Scan(&r.ID, &r.DepartmentID, &r.Title, &r.Track, &r.Summary, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateJobRole(ctx context.Context, r models.JobRole) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE job_roles SET title=%s, track=%s, summary=%s WHERE id=%s`, 4),
		r.Title, r.Track, r.Summary, r.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) DeleteJobRole(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM job_roles WHERE id=%s`, 1), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *SQLStore) UpsertRoleRequirement(ctx context.Context, req models.RoleSkillRequirement) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE role_skill_requirements SET required_level=%s WHERE role_id=%s AND skill_id=%s`, 3),
		req.RequiredLevel, req.RoleID, req.SkillID,
	)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx,
		s.q(`INSERT INTO role_skill_requirements(role_id,skill_id,required_level) VALUES(%s,%s,%s)`, 3),
		req.RoleID, req.SkillID, req.RequiredLevel,
	)
	return err
}

func (s *SQLStore) ListRoleRequirements(ctx context.Context, roleID string) ([]models.RoleSkillRequirement, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT role_id,skill_id,required_level FROM role_skill_requirements WHERE role_id=%s`, 1), roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.RoleSkillRequirement
	for rows.Next() {
		var req models.RoleSkillRequirement
		if err := rows.Scan(&req.RoleID, &req.SkillID, &req.RequiredLevel); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}
