package model

import "time"

// LabSession is a capacity-bounded, multi-participant scheduled event
// tied to a room and time window.  Two non-cancelled sessions in the
// same room must not overlap in time.  Participants are kept in
// registration order; there is no waitlist.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – session title.
//  Description – free-text description.
//  Room        – lab room hosting the session.
//  CreatedBy   – staff member who created the session.
//  StartsAt    – session start (UTC).
//  EndsAt      – session end, strictly after StartsAt.
//  Capacity    – maximum number of participants, positive.
//  Status      – OPEN, CLOSED, COMPLETED or CANCELLED.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type LabSession struct {
	ID          uint64    // lab_sessions.id
	Title       string    // lab_sessions.title
	Description string    // lab_sessions.description
	Room        string    // lab_sessions.room
	CreatedBy   uint64    // lab_sessions.created_by
	StartsAt    time.Time // lab_sessions.starts_at
	EndsAt      time.Time // lab_sessions.ends_at
	Capacity    int       // lab_sessions.capacity
	Status      string    // lab_sessions.status
	CreatedAt   time.Time // lab_sessions.created_at
	UpdatedAt   time.Time // lab_sessions.updated_at
}

// SessionParticipant links a user to a lab session.  RegisteredAt
// preserves registration order for display and audit.
//
// Fields:
//  ID           – primary key identifier.
//  SessionID    – session joined.
//  UserID       – participant.
//  RegisteredAt – when the seat was taken.
type SessionParticipant struct {
	ID           uint64    // session_participants.id
	SessionID    uint64    // session_participants.session_id
	UserID       uint64    // session_participants.user_id
	RegisteredAt time.Time // session_participants.registered_at
}
