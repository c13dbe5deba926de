package model

import "time"

// Notification is an in-app message for one user.  Rows are written by
// the queue consumer when it drains the notification.dispatch queue;
// request handlers never insert notifications directly.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – recipient.
//  Title     – short headline.
//  Message   – body text.
//  Kind      – BOOKING, SESSION, INVENTORY or SYSTEM.
//  IsRead    – whether the recipient has seen it.
//  CreatedAt – creation timestamp.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Title     string    // notifications.title
	Message   string    // notifications.message
	Kind      string    // notifications.kind
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}

// Notification kinds stored in notifications.kind.
const (
	NotifyBooking   = "BOOKING"
	NotifySession   = "SESSION"
	NotifyInventory = "INVENTORY"
	NotifySystem    = "SYSTEM"
)
