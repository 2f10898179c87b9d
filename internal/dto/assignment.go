package dto

// AutoAssignRequest carries the candidate pool for automatic assignment.
// An empty pool defaults to every active TA eligible for the exam's
// department scope.
type AutoAssignRequest struct {
	Pool []string `json:"pool"`
}

// ManualAssignRequest names explicit TAs for an exam. Force bypasses
// availability checks and is always attributed to an actor.
type ManualAssignRequest struct {
	TAIDs   []string `json:"ta_ids" validate:"required,min=1"`
	Force   bool     `json:"force"`
	ActorID string   `json:"actor_id" validate:"required"`
}

// ActorRequest identifies the TA performing a confirm/accept/cancel action.
type ActorRequest struct {
	TAID string `json:"ta_id" validate:"required"`
}

// DeclineRequest refuses an assigned duty.
type DeclineRequest struct {
	TAID   string `json:"ta_id" validate:"required"`
	Reason string `json:"reason"`
}
