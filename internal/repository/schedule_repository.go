package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusops/ta-proctor-api/internal/models"
)

// ScheduleRepository reads weekly schedule entries owned by the schedule
// module.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// CourseTAIDs returns the ids of TAs whose weekly schedule carries a
// SYSTEM_COURSE entry for the course, i.e. the course's own TAs.
func (r *ScheduleRepository) CourseTAIDs(ctx context.Context, courseID string) (map[string]struct{}, error) {
	const query = `SELECT DISTINCT ta_id FROM weekly_schedule_entries
WHERE activity_type = 'SYSTEM_COURSE' AND course_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, fmt.Errorf("list course tas: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// ListByTA returns every recurring weekly commitment of the TA.
func (r *ScheduleRepository) ListByTA(ctx context.Context, taID string) ([]models.WeeklyScheduleEntry, error) {
	const query = `SELECT id, ta_id, day_of_week, start_time, end_time, activity_type, course_id, description
FROM weekly_schedule_entries WHERE ta_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var entries []models.WeeklyScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, taID); err != nil {
		return nil, fmt.Errorf("list weekly schedule: %w", err)
	}
	return entries, nil
}
