package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusops/ta-proctor-api/internal/models"
)

// ErrSwapResolved signals that the PENDING guard on a swap update matched no
// row: another actor already resolved the request.
var ErrSwapResolved = errors.New("swap request already resolved")

// ErrAssignmentNotSwappable signals that the original assignment left the
// ASSIGNED/CONFIRMED states between validation and commit.
var ErrAssignmentNotSwappable = errors.New("assignment no longer swappable")

// SwapRepository persists swap requests and owns the accept transaction. It
// collaborates with the TA repository so credit moves commit atomically with
// the assignment hand-off.
type SwapRepository struct {
	db  *sqlx.DB
	tas *TARepository
}

// NewSwapRepository constructs the repository.
func NewSwapRepository(db *sqlx.DB, tas *TARepository) *SwapRepository {
	return &SwapRepository{db: db, tas: tas}
}

const swapColumns = `id, assignment_id, requester_ta_id, target_ta_id, reason, status, rejection_reason, resolved_by, resolved_at, created_at`

// Create inserts a new PENDING swap request.
func (r *SwapRepository) Create(ctx context.Context, swap *models.SwapRequest) error {
	if swap.ID == "" {
		swap.ID = uuid.NewString()
	}
	if swap.CreatedAt.IsZero() {
		swap.CreatedAt = time.Now().UTC()
	}
	swap.Status = models.SwapPending
	const query = `INSERT INTO swap_requests (id, assignment_id, requester_ta_id, target_ta_id, reason, status, created_at)
VALUES (:id, :assignment_id, :requester_ta_id, :target_ta_id, :reason, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, swap); err != nil {
		return fmt.Errorf("create swap request: %w", err)
	}
	return nil
}

// FindByID loads a single swap request.
func (r *SwapRepository) FindByID(ctx context.Context, id string) (*models.SwapRequest, error) {
	query := `SELECT ` + swapColumns + ` FROM swap_requests WHERE id = $1`
	var swap models.SwapRequest
	if err := r.db.GetContext(ctx, &swap, query, id); err != nil {
		return nil, err
	}
	return &swap, nil
}

// HasPending reports whether the assignment already carries a PENDING swap.
func (r *SwapRepository) HasPending(ctx context.Context, assignmentID string) (bool, error) {
	const query = `SELECT 1 FROM swap_requests WHERE assignment_id = $1 AND status = 'PENDING' LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, assignmentID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check pending swap: %w", err)
	}
	return true, nil
}

// ListIncoming returns pending swaps addressed to the TA.
func (r *SwapRepository) ListIncoming(ctx context.Context, taID string) ([]models.SwapRequestDetail, error) {
	const query = `
SELECT s.id, s.assignment_id, s.requester_ta_id, s.target_ta_id, s.reason, s.status,
       s.rejection_reason, s.resolved_by, s.resolved_at, s.created_at,
       a.exam_id, a.swap_depth, e.course_code, e.start_at AS exam_start, t.full_name AS requester_name
FROM swap_requests s
JOIN assignments a ON a.id = s.assignment_id
JOIN exams e ON e.id = a.exam_id
JOIN teaching_assistants t ON t.id = s.requester_ta_id
WHERE s.target_ta_id = $1 AND s.status = 'PENDING'
ORDER BY e.start_at ASC`
	var swaps []models.SwapRequestDetail
	if err := r.db.SelectContext(ctx, &swaps, query, taID); err != nil {
		return nil, fmt.Errorf("list incoming swaps: %w", err)
	}
	return swaps, nil
}

// ListByAssignment returns the swap history of an assignment.
func (r *SwapRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]models.SwapRequest, error) {
	query := `SELECT ` + swapColumns + ` FROM swap_requests WHERE assignment_id = $1 ORDER BY created_at DESC`
	var swaps []models.SwapRequest
	if err := r.db.SelectContext(ctx, &swaps, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list assignment swaps: %w", err)
	}
	return swaps, nil
}

// Resolve finalises a PENDING swap as REJECTED or CANCELLED. The PENDING
// guard makes concurrent resolutions race-safe; a losing call gets
// ErrSwapResolved.
func (r *SwapRepository) Resolve(ctx context.Context, id string, status models.SwapStatus, resolvedBy string, rejectionReason *string) error {
	const query = `UPDATE swap_requests
SET status = $1, resolved_by = $2, resolved_at = $3, rejection_reason = $4
WHERE id = $5 AND status = 'PENDING'`
	result, err := r.db.ExecContext(ctx, query, status, resolvedBy, time.Now().UTC(), rejectionReason, id)
	if err != nil {
		return fmt.Errorf("resolve swap request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check resolved swap rows: %w", err)
	}
	if affected == 0 {
		return ErrSwapResolved
	}
	return nil
}

// AcceptSwapParams bundles the inputs of the accept transaction.
type AcceptSwapParams struct {
	SwapID       string
	OriginalID   string
	ExamID       string
	FromTAID     string
	ToTAID       string
	SwapDepth    int
	CreditWeight float64
	ResolvedBy   string
}

// Accept commits a swap atomically: the PENDING-guarded swap update is the
// linearization point, then the original assignment flips to SWAPPED, the
// replacement slot is inserted at depth+1, and credit moves between the two
// TAs. Any failure rolls the whole transaction back.
func (r *SwapRepository) Accept(ctx context.Context, params AcceptSwapParams) (created *models.Assignment, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin swap transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	const resolveQuery = `UPDATE swap_requests SET status = 'ACCEPTED', resolved_by = $1, resolved_at = $2
WHERE id = $3 AND status = 'PENDING'`
	result, err := tx.ExecContext(ctx, resolveQuery, params.ResolvedBy, now, params.SwapID)
	if err != nil {
		return nil, fmt.Errorf("accept swap request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check accepted swap rows: %w", err)
	}
	if affected == 0 {
		err = ErrSwapResolved
		return nil, err
	}

	const handoffQuery = `UPDATE assignments SET status = 'SWAPPED', updated_at = $1
WHERE id = $2 AND status IN ('ASSIGNED', 'CONFIRMED')`
	result, err = tx.ExecContext(ctx, handoffQuery, now, params.OriginalID)
	if err != nil {
		return nil, fmt.Errorf("hand off assignment: %w", err)
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("check handed-off rows: %w", err)
	}
	if affected == 0 {
		err = ErrAssignmentNotSwappable
		return nil, err
	}

	created = &models.Assignment{
		ID:        uuid.NewString(),
		ExamID:    params.ExamID,
		TAID:      params.ToTAID,
		Status:    models.AssignmentConfirmed,
		Mode:      models.ModeSwap,
		SwapDepth: params.SwapDepth + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	const insertQuery = `INSERT INTO assignments (id, exam_id, ta_id, status, mode, swap_depth, paid, created_at, updated_at)
VALUES (:id, :exam_id, :ta_id, :status, :mode, :swap_depth, :paid, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, created); err != nil {
		return nil, fmt.Errorf("insert replacement assignment: %w", err)
	}

	if err = r.tas.ApplyCredit(ctx, tx, params.FromTAID, -params.CreditWeight); err != nil {
		return nil, err
	}
	if err = r.tas.ApplyCredit(ctx, tx, params.ToTAID, params.CreditWeight); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit swap: %w", err)
	}
	return created, nil
}
