package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamOverlapsWithGap(t *testing.T) {
	start := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	exam := &Exam{StartAt: start, EndAt: start.Add(2 * time.Hour)}
	gap := 30 * time.Minute

	// Ends 20 minutes before the exam: inside the rest gap.
	assert.True(t, exam.Overlaps(start.Add(-3*time.Hour), start.Add(-20*time.Minute), gap))
	// Ends 45 minutes before: clear.
	assert.False(t, exam.Overlaps(start.Add(-3*time.Hour), start.Add(-45*time.Minute), gap))
	// Direct overlap.
	assert.True(t, exam.Overlaps(start.Add(time.Hour), start.Add(3*time.Hour), 0))
	// Back to back with zero gap is fine.
	assert.False(t, exam.Overlaps(exam.EndAt, exam.EndAt.Add(time.Hour), 0))
}

func TestAssignmentStatusPartitions(t *testing.T) {
	for _, status := range []AssignmentStatus{AssignmentAssigned, AssignmentConfirmed} {
		assert.True(t, status.Active(), status)
		assert.False(t, status.Terminal(), status)
	}
	for _, status := range []AssignmentStatus{AssignmentCompleted, AssignmentSwapped, AssignmentDeclined} {
		assert.False(t, status.Active(), status)
		assert.True(t, status.Terminal(), status)
	}
}

func TestObligationTarget(t *testing.T) {
	fullTime := &TA{Employment: EmploymentFullTime}
	partTime := &TA{Employment: EmploymentPartTime}
	assert.Equal(t, 8.0, fullTime.ObligationTarget(4))
	assert.Equal(t, 4.0, partTime.ObligationTarget(4))
}

func TestMinutesOfDay(t *testing.T) {
	minutes, err := MinutesOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)

	for _, bad := range []string{"", "9", "25:00", "09:75", "a:b"} {
		_, err := MinutesOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestWeeklyScheduleOverlapsWindow(t *testing.T) {
	entry := &WeeklyScheduleEntry{DayOfWeek: "Tuesday", StartTime: "10:00", EndTime: "12:00"}
	tuesday := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

	overlaps, err := entry.OverlapsWindow(tuesday, tuesday.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, overlaps)

	overlaps, err = entry.OverlapsWindow(tuesday.Add(3*time.Hour), tuesday.Add(5*time.Hour))
	require.NoError(t, err)
	assert.False(t, overlaps)

	wednesday := tuesday.AddDate(0, 0, 1)
	overlaps, err = entry.OverlapsWindow(wednesday, wednesday.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, overlaps)
}

func TestLeaveCoversInclusive(t *testing.T) {
	leave := &LeaveRequest{
		StartDate: time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, leave.Covers(time.Date(2026, time.September, 1, 14, 0, 0, 0, time.UTC)))
	assert.True(t, leave.Covers(time.Date(2026, time.September, 3, 8, 0, 0, 0, time.UTC)))
	assert.False(t, leave.Covers(time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC)))
}
