package models

import "time"

// AssignmentStatus captures the lifecycle of a proctoring duty slot.
type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "ASSIGNED"
	AssignmentConfirmed AssignmentStatus = "CONFIRMED"
	AssignmentCompleted AssignmentStatus = "COMPLETED"
	AssignmentSwapped   AssignmentStatus = "SWAPPED"
	AssignmentDeclined  AssignmentStatus = "DECLINED"
)

// Active reports whether the status still binds the TA to the duty.
func (s AssignmentStatus) Active() bool {
	switch s {
	case AssignmentAssigned, AssignmentConfirmed:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s AssignmentStatus) Terminal() bool {
	switch s {
	case AssignmentCompleted, AssignmentSwapped, AssignmentDeclined:
		return true
	}
	return false
}

// AssignmentMode records how an assignment came to exist.
type AssignmentMode string

const (
	ModeAuto   AssignmentMode = "AUTO"
	ModeManual AssignmentMode = "MANUAL"
	ModeSwap   AssignmentMode = "SWAP"
)

// Assignment binds a TA to an exam proctoring slot.
type Assignment struct {
	ID        string           `db:"id" json:"id"`
	ExamID    string           `db:"exam_id" json:"exam_id"`
	TAID      string           `db:"ta_id" json:"ta_id"`
	Status    AssignmentStatus `db:"status" json:"status"`
	Mode      AssignmentMode   `db:"mode" json:"mode"`
	SwapDepth int              `db:"swap_depth" json:"swap_depth"`
	Paid      bool             `db:"paid" json:"paid"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AssignmentDetail enriches an assignment with exam and TA display fields.
type AssignmentDetail struct {
	Assignment
	TAName     string    `db:"ta_name" json:"ta_name"`
	CourseCode string    `db:"course_code" json:"course_code"`
	Section    string    `db:"section" json:"section"`
	ExamStart  time.Time `db:"exam_start" json:"exam_start"`
	ExamEnd    time.Time `db:"exam_end" json:"exam_end"`
	Rooms      string    `db:"rooms" json:"rooms"`
}
