package events

import "time"

const ActivityRequestDecidedTopic = "hr.activity.decision.v1"

type ActivityRequestDecidedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	RequestType string    `json:"request_type"`
	EmployeeID  string    `json:"employee_id"`
	Status      string    `json:"status"`
	ActorID     string    `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}
