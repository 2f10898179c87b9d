package models

import "time"

// SwapStatus captures the lifecycle of a swap request. PENDING is the only
// non-terminal state.
type SwapStatus string

const (
	SwapPending   SwapStatus = "PENDING"
	SwapAccepted  SwapStatus = "ACCEPTED"
	SwapRejected  SwapStatus = "REJECTED"
	SwapCancelled SwapStatus = "CANCELLED"
)

// SwapRequest asks to transfer an assignment from its current holder to
// another TA. TargetTAID is nil for open requests resolved by staff.
type SwapRequest struct {
	ID              string     `db:"id" json:"id"`
	AssignmentID    string     `db:"assignment_id" json:"assignment_id"`
	RequesterTAID   string     `db:"requester_ta_id" json:"requester_ta_id"`
	TargetTAID      *string    `db:"target_ta_id" json:"target_ta_id,omitempty"`
	Reason          string     `db:"reason" json:"reason"`
	Status          SwapStatus `db:"status" json:"status"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ResolvedBy      *string    `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// SwapRequestDetail enriches a swap with the underlying duty context.
type SwapRequestDetail struct {
	SwapRequest
	ExamID        string    `db:"exam_id" json:"exam_id"`
	CourseCode    string    `db:"course_code" json:"course_code"`
	ExamStart     time.Time `db:"exam_start" json:"exam_start"`
	RequesterName string    `db:"requester_name" json:"requester_name"`
	SwapDepth     int       `db:"swap_depth" json:"swap_depth"`
}

// SwapOutcome pairs the handed-off assignment with its replacement.
type SwapOutcome struct {
	Request  *SwapRequest `json:"request"`
	Original *Assignment  `json:"original"`
	Created  *Assignment  `json:"created"`
}
