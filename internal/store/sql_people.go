package store

import (
	"context"
	"database/sql"
	"time"

	"careermatrix/internal/models"
)

func (s *SQLStore) CreateAssessment(ctx context.Context, a models.Assessment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		s.q(`INSERT INTO assessments(id,user_id,role_id,created_at) VALUES(%s,%s,%s,%s)`, 4),
		a.ID, a.UserID, a.RoleID, a.CreatedAt,
	); err != nil {
		return err
	}
	for _, item := range a.Items {
		if _, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO assessment_items(assessment_id,skill_id,self_level) VALUES(%s,%s,%s)`, 3),
			a.ID, item.SkillID, item.SelfLevel,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetAssessment(ctx context.Context, id string) (models.Assessment, error) {
	var a models.Assessment
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id,user_id,role_id,created_at FROM assessments WHERE id=%s`, 1), id,
	).Scan(&a.ID, &a.UserID, &a.RoleID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Assessment{}, ErrNotFound
	}
	if err != nil {
		return models.Assessment{}, err
	}
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT skill_id,self_level FROM assessment_items WHERE assessment_id=%s`, 1), id)
	if err != nil {
		return models.Assessment{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item models.AssessmentItem
		if err := rows.Scan(&item.SkillID, &item.SelfLevel); err != nil {
			return models.Assessment{}, err
		}
		a.Items = append(a.Items, item)
	}
	return a, rows.Err()
}

func (s *SQLStore) ListAssessmentsByUser(ctx context.Context, userID string) ([]models.Assessment, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT id,user_id,role_id,created_at FROM assessments WHERE user_id=%s ORDER BY created_at DESC`, 1),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Assessment
	for rows.Next() {
		var a models.Assessment
		if err := rows.Scan(&a.ID, &a.UserID, &a.RoleID, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const oneOnOneCols = `id,user_id,manager_id,scheduled_at,notes,completed_at,created_at`

func (s *SQLStore) CreateOneOnOne(ctx context.Context, o models.OneOnOne) error {
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO one_on_ones(`+oneOnOneCols+`) VALUES(%s,%s,%s,%s,%s,%s,%s)`, 7),
		o.ID, o.UserID, o.ManagerID, o.ScheduledAt, o.Notes, o.CompletedAt, o.CreatedAt,
	)
	return err
}

func (s *SQLStore) GetOneOnOne(ctx context.Context, id string) (models.OneOnOne, error) {
	var o models.OneOnOne
	var completed sql.NullTime
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+oneOnOneCols+` FROM one_on_ones WHERE id=%s`, 1), id,
	).Scan(&o.ID, &o.UserID, &o.ManagerID, &o.ScheduledAt, &o.Notes, &completed, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return models.OneOnOne{}, ErrNotFound
	}
	if err != nil {
		return models.OneOnOne{}, err
	}
	if completed.Valid {
		t := completed.Time
		o.CompletedAt = &t
	}
	return o, nil
}

func (s *SQLStore) ListOneOnOnesForUser(ctx context.Context, userID string) ([]models.OneOnOne, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+oneOnOneCols+` FROM one_on_ones WHERE user_id=%s OR manager_id=%s ORDER BY scheduled_at DESC`, 2),
		userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.OneOnOne
	for rows.Next() {
		var o models.OneOnOne
		var completed sql.NullTime
		if err := rows.Scan(&o.ID, &o.UserID, &o.ManagerID, &o.ScheduledAt, &o.Notes, &completed, &o.CreatedAt); err != nil {
			return nil, err
		}
		if completed.Valid {
			t := completed.Time
			o.CompletedAt = &t
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLStore) CompleteOneOnOne(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE one_on_ones SET completed_at=%s WHERE id=%s AND completed_at IS NULL`, 2), at, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
