package dto

// AvailabilityResult reports whether a TA can take an exam duty and, when
// not, which conflicts apply.
type AvailabilityResult struct {
	TAID      string   `json:"ta_id"`
	ExamID    string   `json:"exam_id"`
	Available bool     `json:"available"`
	Reasons   []string `json:"reasons,omitempty"`
}

// WorkloadResult is the single-TA workload view.
type WorkloadResult struct {
	TAID        string  `json:"ta_id"`
	Credit      float64 `json:"credit"`
	Target      float64 `json:"target"`
	Utilization float64 `json:"utilization"`
}
