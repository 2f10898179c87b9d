package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/campusops/ta-proctor-api/internal/models"
)

// ExamRepository reads exam records owned by the course/exam module.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// FindByID loads a single exam.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, course_id, course_code, section, department_id, start_at, end_at,
       required_proctors, rooms, cross_department, credit_weight, created_at
FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}
