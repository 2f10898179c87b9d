package models

import "time"

// Exam is a scheduled exam session to be staffed with proctors. Exam records
// themselves are created by the course/exam module; this engine only reads
// them.
type Exam struct {
	ID               string    `db:"id" json:"id"`
	CourseID         string    `db:"course_id" json:"course_id"`
	CourseCode       string    `db:"course_code" json:"course_code"`
	Section          string    `db:"section" json:"section"`
	DepartmentID     string    `db:"department_id" json:"department_id"`
	StartAt          time.Time `db:"start_at" json:"start_at"`
	EndAt            time.Time `db:"end_at" json:"end_at"`
	RequiredProctors int       `db:"required_proctors" json:"required_proctors"`
	Rooms            string    `db:"rooms" json:"rooms"`
	CrossDepartment  bool      `db:"cross_department" json:"cross_department"`
	CreditWeight     float64   `db:"credit_weight" json:"credit_weight"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// DurationMinutes derives the session length.
func (e *Exam) DurationMinutes() int {
	return int(e.EndAt.Sub(e.StartAt).Minutes())
}

// Overlaps reports whether the exam window intersects [start, end) padded by
// gap on both sides. The gap models the minimum rest between consecutive
// duties.
func (e *Exam) Overlaps(start, end time.Time, gap time.Duration) bool {
	return e.StartAt.Add(-gap).Before(end) && start.Before(e.EndAt.Add(gap))
}
