package models

import "time"

// AcademicLevel enumerates TA degree programs.
type AcademicLevel string

const (
	LevelMasters AcademicLevel = "MASTERS"
	LevelPhD     AcademicLevel = "PHD"
)

// EmploymentType distinguishes full-time from part-time TAs.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "FULL_TIME"
	EmploymentPartTime EmploymentType = "PART_TIME"
)

// TA represents a teaching assistant eligible for proctoring duty.
type TA struct {
	ID             string         `db:"id" json:"id"`
	FullName       string         `db:"full_name" json:"full_name"`
	Email          string         `db:"email" json:"email"`
	Level          AcademicLevel  `db:"level" json:"level"`
	Employment     EmploymentType `db:"employment" json:"employment"`
	DepartmentID   string         `db:"department_id" json:"department_id"`
	WorkloadCredit float64        `db:"workload_credit" json:"workload_credit"`
	Active         bool           `db:"active" json:"active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// ObligationTarget returns the per-term proctoring target for the TA.
// Full-time TAs carry double the part-time target; this is a balancing
// reference, not a cap.
func (t *TA) ObligationTarget(partTimeTarget float64) float64 {
	if t.Employment == EmploymentFullTime {
		return partTimeTarget * 2
	}
	return partTimeTarget
}

// WorkloadEntry is a reporting row combining credit with the obligation
// target.
type WorkloadEntry struct {
	TAID         string         `db:"ta_id" json:"ta_id"`
	FullName     string         `db:"full_name" json:"full_name"`
	DepartmentID string         `db:"department_id" json:"department_id"`
	Employment   EmploymentType `db:"employment" json:"employment"`
	Credit       float64        `db:"credit" json:"credit"`
	Target       float64        `json:"target"`
	Utilization  float64        `json:"utilization"`
}
