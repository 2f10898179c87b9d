package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusops/ta-proctor-api/internal/models"
)

// LeaveRepository reads leave requests owned by the leave module.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs the repository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// ListApprovedCovering returns APPROVED leave ranges for the TA that include
// the given day.
func (r *LeaveRepository) ListApprovedCovering(ctx context.Context, taID string, day time.Time) ([]models.LeaveRequest, error) {
	const query = `SELECT id, ta_id, start_date, end_date, leave_type, status, created_at
FROM leave_requests
WHERE ta_id = $1 AND status = 'APPROVED' AND start_date <= $2 AND end_date >= $2`
	var leaves []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &leaves, query, taID, day); err != nil {
		return nil, fmt.Errorf("list approved leave: %w", err)
	}
	return leaves, nil
}
