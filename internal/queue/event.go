// Package queue defines message payloads exchanged over the message broker.
package queue

// Audience values select who receives a NotificationEvent.  AudienceUser
// targets the single user in UserID; AudienceStaff fans the message out
// to every active staff account (new booking requests, low-stock
// alerts).
const (
	AudienceUser  = "USER"
	AudienceStaff = "STAFF"
)

// NotificationEvent is published on every reservation lifecycle
// transition and on inventory low-stock conditions.  It carries enough
// information for the consumer to materialise in-app notification rows
// without querying back into the domain tables.  Publishing is
// fire-and-forget: a broker failure never fails the transition that
// raised the event.
type NotificationEvent struct {
	Kind       string `json:"kind"`              // notification kind (BOOKING, SESSION, INVENTORY, SYSTEM)
	Audience   string `json:"audience"`          // USER or STAFF
	UserID     uint64 `json:"user_id,omitempty"` // recipient when Audience is USER
	Title      string `json:"title"`             // short headline
	Message    string `json:"message"`           // body text
	OccurredAt string `json:"occurred_at"`       // RFC3339 timestamp of the originating transition
}
