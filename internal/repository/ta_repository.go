package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusops/ta-proctor-api/internal/models"
)

// TARepository reads teaching assistants and holds the sole write path for
// workload credit.
type TARepository struct {
	db *sqlx.DB
}

// NewTARepository constructs the repository.
func NewTARepository(db *sqlx.DB) *TARepository {
	return &TARepository{db: db}
}

// FindByID loads a single TA.
func (r *TARepository) FindByID(ctx context.Context, id string) (*models.TA, error) {
	const query = `SELECT id, full_name, email, level, employment, department_id, workload_credit, active, created_at
FROM teaching_assistants WHERE id = $1`
	var ta models.TA
	if err := r.db.GetContext(ctx, &ta, query, id); err != nil {
		return nil, err
	}
	return &ta, nil
}

// ListByIDs loads the given TAs, silently skipping unknown ids.
func (r *TARepository) ListByIDs(ctx context.Context, ids []string) ([]models.TA, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, full_name, email, level, employment, department_id, workload_credit, active, created_at
FROM teaching_assistants WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build ta id query: %w", err)
	}
	query = r.db.Rebind(query)
	var tas []models.TA
	if err := r.db.SelectContext(ctx, &tas, query, args...); err != nil {
		return nil, fmt.Errorf("list tas by id: %w", err)
	}
	return tas, nil
}

// ListActive returns active TAs, scoped to one department unless departmentID
// is empty.
func (r *TARepository) ListActive(ctx context.Context, departmentID string) ([]models.TA, error) {
	const base = `SELECT id, full_name, email, level, employment, department_id, workload_credit, active, created_at
FROM teaching_assistants WHERE active = TRUE`
	var tas []models.TA
	if departmentID == "" {
		if err := r.db.SelectContext(ctx, &tas, base+` ORDER BY id ASC`); err != nil {
			return nil, fmt.Errorf("list active tas: %w", err)
		}
		return tas, nil
	}
	if err := r.db.SelectContext(ctx, &tas, base+` AND department_id = $1 ORDER BY id ASC`, departmentID); err != nil {
		return nil, fmt.Errorf("list active tas by department: %w", err)
	}
	return tas, nil
}

// ApplyCredit adjusts workload credit inside the caller's transaction. The
// clamp keeps the stored total from dropping below zero.
func (r *TARepository) ApplyCredit(ctx context.Context, tx sqlx.ExecerContext, taID string, delta float64) error {
	const query = `UPDATE teaching_assistants SET workload_credit = GREATEST(workload_credit + $1, 0) WHERE id = $2`
	result, err := tx.ExecContext(ctx, query, delta, taID)
	if err != nil {
		return fmt.Errorf("apply workload credit: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check credit rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("apply workload credit: ta %s not found", taID)
	}
	return nil
}

// WorkloadRows lists raw credit totals for every active TA, ordered for
// deterministic reports.
func (r *TARepository) WorkloadRows(ctx context.Context) ([]models.WorkloadEntry, error) {
	const query = `SELECT id AS ta_id, full_name, department_id, employment, workload_credit AS credit
FROM teaching_assistants WHERE active = TRUE ORDER BY workload_credit ASC, id ASC`
	var rows []models.WorkloadEntry
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list workload rows: %w", err)
	}
	return rows, nil
}
