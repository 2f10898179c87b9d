package models

import "time"

// NotificationType enumerates engine-emitted events. Delivery (email, push)
// belongs to the notification module; the engine only produces events.
type NotificationType string

const (
	NotifyAssignmentCreated   NotificationType = "ASSIGNMENT_CREATED"
	NotifyAssignmentConfirmed NotificationType = "ASSIGNMENT_CONFIRMED"
	NotifyAssignmentDeclined  NotificationType = "ASSIGNMENT_DECLINED"
	NotifyAssignmentCompleted NotificationType = "ASSIGNMENT_COMPLETED"
	NotifySwapRequested       NotificationType = "SWAP_REQUESTED"
	NotifySwapAccepted        NotificationType = "SWAP_ACCEPTED"
	NotifySwapRejected        NotificationType = "SWAP_REJECTED"
	NotifySwapCancelled       NotificationType = "SWAP_CANCELLED"
)

// NotificationEvent is the fire-and-forget payload handed to the emitter.
type NotificationEvent struct {
	ID           string           `json:"id"`
	Type         NotificationType `json:"type"`
	Recipients   []string         `json:"recipients"`
	ExamID       string           `json:"exam_id,omitempty"`
	AssignmentID string           `json:"assignment_id,omitempty"`
	SwapID       string           `json:"swap_id,omitempty"`
	Message      string           `json:"message,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}
