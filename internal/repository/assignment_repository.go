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

// ErrExamFull signals that committing the batch would exceed the exam's
// required proctor count. Raised inside the creation transaction after the
// exam row lock is taken, so concurrent writers serialize and the loser
// observes the winner's rows.
var ErrExamFull = errors.New("exam proctor slots already filled")

// ActiveDuty is a slim projection used for overlap checks.
type ActiveDuty struct {
	AssignmentID string    `db:"assignment_id"`
	ExamID       string    `db:"exam_id"`
	StartAt      time.Time `db:"start_at"`
	EndAt        time.Time `db:"end_at"`
}

// AssignmentRepository persists proctoring assignments. It collaborates with
// the TA repository so credit deltas commit in the same transaction as the
// assignment rows they belong to.
type AssignmentRepository struct {
	db  *sqlx.DB
	tas *TARepository
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB, tas *TARepository) *AssignmentRepository {
	return &AssignmentRepository{db: db, tas: tas}
}

const assignmentColumns = `id, exam_id, ta_id, status, mode, swap_depth, paid, created_at, updated_at`

// FindByID loads a single assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ListByExam returns the roster for an exam, newest first within status.
func (r *AssignmentRepository) ListByExam(ctx context.Context, examID string) ([]models.AssignmentDetail, error) {
	const query = `
SELECT a.id, a.exam_id, a.ta_id, a.status, a.mode, a.swap_depth, a.paid, a.created_at, a.updated_at,
       t.full_name AS ta_name, e.course_code, e.section, e.start_at AS exam_start, e.end_at AS exam_end, e.rooms
FROM assignments a
JOIN teaching_assistants t ON t.id = a.ta_id
JOIN exams e ON e.id = a.exam_id
WHERE a.exam_id = $1
ORDER BY a.status ASC, a.created_at ASC`
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, examID); err != nil {
		return nil, fmt.Errorf("list exam roster: %w", err)
	}
	return assignments, nil
}

// ListByTA returns a TA's duties; activeOnly restricts to ASSIGNED/CONFIRMED.
func (r *AssignmentRepository) ListByTA(ctx context.Context, taID string, activeOnly bool) ([]models.AssignmentDetail, error) {
	query := `
SELECT a.id, a.exam_id, a.ta_id, a.status, a.mode, a.swap_depth, a.paid, a.created_at, a.updated_at,
       t.full_name AS ta_name, e.course_code, e.section, e.start_at AS exam_start, e.end_at AS exam_end, e.rooms
FROM assignments a
JOIN teaching_assistants t ON t.id = a.ta_id
JOIN exams e ON e.id = a.exam_id
WHERE a.ta_id = $1`
	if activeOnly {
		query += ` AND a.status IN ('ASSIGNED', 'CONFIRMED')`
	}
	query += ` ORDER BY e.start_at ASC`
	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, taID); err != nil {
		return nil, fmt.Errorf("list ta assignments: %w", err)
	}
	return assignments, nil
}

// ListActiveDuties returns the active duty windows for a TA, used by the
// availability resolver for overlap checks.
func (r *AssignmentRepository) ListActiveDuties(ctx context.Context, taID string) ([]ActiveDuty, error) {
	const query = `
SELECT a.id AS assignment_id, a.exam_id, e.start_at, e.end_at
FROM assignments a
JOIN exams e ON e.id = a.exam_id
WHERE a.ta_id = $1 AND a.status IN ('ASSIGNED', 'CONFIRMED')`
	var duties []ActiveDuty
	if err := r.db.SelectContext(ctx, &duties, query, taID); err != nil {
		return nil, fmt.Errorf("list active duties: %w", err)
	}
	return duties, nil
}

// HasActiveForExam reports whether the TA already holds a live slot on the
// exam.
func (r *AssignmentRepository) HasActiveForExam(ctx context.Context, examID, taID string) (bool, error) {
	const query = `SELECT 1 FROM assignments WHERE exam_id = $1 AND ta_id = $2 AND status NOT IN ('SWAPPED', 'DECLINED') LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, examID, taID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check active assignment: %w", err)
	}
	return true, nil
}

// CreateBatch inserts assignments and applies workload credit in one
// transaction. The exam row is locked first and the live slot count
// re-validated, so two concurrent writers cannot jointly overfill the exam.
func (r *AssignmentRepository) CreateBatch(ctx context.Context, exam *models.Exam, assignments []*models.Assignment, creditWeight float64) (err error) {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedID string
	if err = tx.GetContext(ctx, &lockedID, `SELECT id FROM exams WHERE id = $1 FOR UPDATE`, exam.ID); err != nil {
		return fmt.Errorf("lock exam row: %w", err)
	}

	var active int
	const countQuery = `SELECT COUNT(*) FROM assignments WHERE exam_id = $1 AND status NOT IN ('SWAPPED', 'DECLINED')`
	if err = tx.GetContext(ctx, &active, countQuery, exam.ID); err != nil {
		return fmt.Errorf("count live assignments: %w", err)
	}
	if active+len(assignments) > exam.RequiredProctors {
		err = ErrExamFull
		return err
	}

	now := time.Now().UTC()
	const insertQuery = `INSERT INTO assignments (id, exam_id, ta_id, status, mode, swap_depth, paid, created_at, updated_at)
VALUES (:id, :exam_id, :ta_id, :status, :mode, :swap_depth, :paid, :created_at, :updated_at)`
	for _, assignment := range assignments {
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		}
		assignment.ExamID = exam.ID
		if assignment.CreatedAt.IsZero() {
			assignment.CreatedAt = now
		}
		assignment.UpdatedAt = assignment.CreatedAt
		if _, err = tx.NamedExecContext(ctx, insertQuery, assignment); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
		if err = r.tas.ApplyCredit(ctx, tx, assignment.TAID, creditWeight); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment batch: %w", err)
	}
	return nil
}

// UpdateStatus transitions an assignment guarded by the allowed source
// states. Returns sql.ErrNoRows when the guard does not match, which callers
// map to an invalid-transition error.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, id string, from []models.AssignmentStatus, to models.AssignmentStatus) error {
	if len(from) == 0 {
		return fmt.Errorf("update assignment status: empty guard")
	}
	query, args, err := sqlx.In(
		`UPDATE assignments SET status = ?, updated_at = ? WHERE id = ? AND status IN (?)`,
		to, time.Now().UTC(), id, from,
	)
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}
	query = r.db.Rebind(query)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeclineWithCredit flips an ASSIGNED slot to DECLINED and reverses the
// workload credit in the same transaction.
func (r *AssignmentRepository) DeclineWithCredit(ctx context.Context, id, taID string, creditWeight float64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decline transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE assignments SET status = 'DECLINED', updated_at = $1
WHERE id = $2 AND ta_id = $3 AND status = 'ASSIGNED'`
	result, err := tx.ExecContext(ctx, query, time.Now().UTC(), id, taID)
	if err != nil {
		return fmt.Errorf("decline assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check declined rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = r.tas.ApplyCredit(ctx, tx, taID, -creditWeight); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit decline: %w", err)
	}
	return nil
}

// ListElapsedActive returns live assignments whose exam has already ended,
// for the completion sweep.
func (r *AssignmentRepository) ListElapsedActive(ctx context.Context, now time.Time) ([]models.Assignment, error) {
	const query = `
SELECT a.id, a.exam_id, a.ta_id, a.status, a.mode, a.swap_depth, a.paid, a.created_at, a.updated_at
FROM assignments a
JOIN exams e ON e.id = a.exam_id
WHERE a.status IN ('ASSIGNED', 'CONFIRMED') AND e.end_at <= $1
ORDER BY e.end_at ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, now); err != nil {
		return nil, fmt.Errorf("list elapsed assignments: %w", err)
	}
	return assignments, nil
}

// Complete marks a duty COMPLETED and payable. Re-running on an already
// completed row affects nothing and returns sql.ErrNoRows.
func (r *AssignmentRepository) Complete(ctx context.Context, id string) error {
	const query = `UPDATE assignments SET status = 'COMPLETED', paid = TRUE, updated_at = $1
WHERE id = $2 AND status IN ('ASSIGNED', 'CONFIRMED')`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("complete assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check completed rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
