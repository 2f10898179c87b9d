package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ActivityType tags what occupies a weekly schedule slot: a course the TA
// assists in, or a free-form commitment.
type ActivityType string

const (
	ActivitySystemCourse ActivityType = "SYSTEM_COURSE"
	ActivityOther        ActivityType = "OTHER"
)

// WeeklyScheduleEntry is a recurring weekly commitment for a TA, consumed
// read-only from the schedule module. Exactly one of CourseID or Description
// is meaningful depending on ActivityType.
type WeeklyScheduleEntry struct {
	ID           string       `db:"id" json:"id"`
	TAID         string       `db:"ta_id" json:"ta_id"`
	DayOfWeek    string       `db:"day_of_week" json:"day_of_week"`
	StartTime    string       `db:"start_time" json:"start_time"`
	EndTime      string       `db:"end_time" json:"end_time"`
	ActivityType ActivityType `db:"activity_type" json:"activity_type"`
	CourseID     *string      `db:"course_id" json:"course_id,omitempty"`
	Description  *string      `db:"description" json:"description,omitempty"`
}

// Label renders the occupying activity for diagnostics.
func (e *WeeklyScheduleEntry) Label() string {
	if e.ActivityType == ActivitySystemCourse && e.CourseID != nil {
		return "course:" + *e.CourseID
	}
	if e.Description != nil {
		return *e.Description
	}
	return "unspecified"
}

// OverlapsWindow reports whether the entry collides with a concrete exam
// window on the same weekday.
func (e *WeeklyScheduleEntry) OverlapsWindow(start, end time.Time) (bool, error) {
	if !strings.EqualFold(e.DayOfWeek, start.Weekday().String()) {
		return false, nil
	}
	entryStart, err := MinutesOfDay(e.StartTime)
	if err != nil {
		return false, err
	}
	entryEnd, err := MinutesOfDay(e.EndTime)
	if err != nil {
		return false, err
	}
	windowStart := start.Hour()*60 + start.Minute()
	windowEnd := end.Hour()*60 + end.Minute()
	return entryStart < windowEnd && windowStart < entryEnd, nil
}

// MinutesOfDay parses an HH:MM clock value into minutes since midnight.
func MinutesOfDay(clock string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock value %q out of range", clock)
	}
	return hours*60 + minutes, nil
}
