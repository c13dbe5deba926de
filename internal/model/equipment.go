package model

import "time"

// Equipment is a bookable lab asset.  Its status reflects the set of
// active reservations and administrative overrides: AVAILABLE equipment
// can be requested, BOOKED equipment has a confirmed reservation,
// MAINTENANCE and UNAVAILABLE are staff overrides.  Status changes that
// would contradict outstanding confirmed reservations are rejected by
// the registry guard.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – human-readable asset name.
//  Description  – free-text description.
//  Category     – coarse grouping (e.g. MICROSCOPY, COMPUTING).
//  SerialNumber – unique manufacturer serial.
//  Location     – room or bench where the asset lives.
//  Status       – AVAILABLE, BOOKED, MAINTENANCE or UNAVAILABLE.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Equipment struct {
	ID           uint64    // equipment.id
	Name         string    // equipment.name
	Description  string    // equipment.description
	Category     string    // equipment.category
	SerialNumber string    // equipment.serial_number
	Location     string    // equipment.location
	Status       string    // equipment.status
	CreatedAt    time.Time // equipment.created_at
	UpdatedAt    time.Time // equipment.updated_at
}
