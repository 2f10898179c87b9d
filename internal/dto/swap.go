package dto

// CreateSwapRequest opens a swap for an assignment held by TAID. TargetTAID
// is optional; open requests are resolved by staff.
type CreateSwapRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	TAID         string `json:"ta_id" validate:"required"`
	Reason       string `json:"reason" validate:"required"`
	TargetTAID   string `json:"target_ta_id"`
}

// RejectSwapRequest declines a pending swap; a reason is mandatory.
type RejectSwapRequest struct {
	TAID   string `json:"ta_id" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}
