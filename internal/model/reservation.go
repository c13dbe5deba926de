package model

import "time"

// Reservation is a time-bounded claim on one piece of equipment by one
// user.  The interval is half-open [StartsAt, EndsAt): two reservations
// conflict only when their intervals truly intersect, so back-to-back
// bookings are allowed.  Only CONFIRMED reservations block the
// equipment.
//
// Fields:
//  ID              – primary key identifier, monotonically assigned.
//  UserID          – owner of the reservation.
//  EquipmentID     – equipment being reserved.
//  StartsAt        – interval start (UTC, full timestamp precision).
//  EndsAt          – interval end, strictly after StartsAt.
//  Purpose         – free-text reason for the booking, required.
//  Status          – PENDING, CONFIRMED, REJECTED, CANCELLED or COMPLETED.
//  ApprovedBy      – staff member who confirmed the booking, if any.
//  RejectionReason – staff-supplied reason when rejected.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    // reservations.id
	UserID          uint64    // reservations.user_id
	EquipmentID     uint64    // reservations.equipment_id
	StartsAt        time.Time // reservations.starts_at
	EndsAt          time.Time // reservations.ends_at
	Purpose         string    // reservations.purpose
	Status          string    // reservations.status
	ApprovedBy      *uint64   // reservations.approved_by (nullable)
	RejectionReason *string   // reservations.rejection_reason (nullable)
	CreatedAt       time.Time // reservations.created_at
	UpdatedAt       time.Time // reservations.updated_at
}
