package models

import "time"

// LeaveStatus mirrors the leave module's workflow states. Only APPROVED
// leave blocks availability.
type LeaveStatus string

const (
	LeavePending   LeaveStatus = "PENDING"
	LeaveApproved  LeaveStatus = "APPROVED"
	LeaveRejected  LeaveStatus = "REJECTED"
	LeaveCancelled LeaveStatus = "CANCELLED"
)

// LeaveRequest is consumed read-only from the leave module.
type LeaveRequest struct {
	ID        string      `db:"id" json:"id"`
	TAID      string      `db:"ta_id" json:"ta_id"`
	StartDate time.Time   `db:"start_date" json:"start_date"`
	EndDate   time.Time   `db:"end_date" json:"end_date"`
	LeaveType string      `db:"leave_type" json:"leave_type"`
	Status    LeaveStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// Covers reports whether the leave range includes the given day. Ranges are
// inclusive on both ends and compared at date granularity.
func (l *LeaveRequest) Covers(day time.Time) bool {
	d := day.Truncate(24 * time.Hour)
	start := l.StartDate.Truncate(24 * time.Hour)
	end := l.EndDate.Truncate(24 * time.Hour)
	return !d.Before(start) && !d.After(end)
}
