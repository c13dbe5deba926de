package model

import "time"

// User represents an account in the lab booking system.  Students book
// equipment and join lab sessions; staff approve bookings, manage
// equipment, sessions and inventory.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – login email, stored lower-cased and unique.
//  PasswordHash – bcrypt hash of the password.
//  FullName     – display name shown on rosters and reservations.
//  Role         – STUDENT or STAFF.
//  IsActive     – soft-disable flag for accounts.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Roles recognised in the users.role column and the JWT role claim.
const (
	RoleStudent = "STUDENT"
	RoleStaff   = "STAFF"
)
