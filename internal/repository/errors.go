// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrActiveReservations indicates that equipment cannot be
// marked AVAILABLE while a confirmed reservation still covers it, while
// ErrEquipmentInUse signals that equipment cannot be removed while
// confirmed reservations still reference it.
package repository

import "errors"

// ErrEquipmentNotFound is returned when no equipment row matches the
// requested identifier.
var ErrEquipmentNotFound = errors.New("equipment not found")

// ErrReservationNotFound is returned when no reservation row matches
// the requested identifier.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrSessionNotFound is returned when no lab session row matches the
// requested identifier.
var ErrSessionNotFound = errors.New("session not found")

// ErrItemNotFound is returned when no inventory item matches the
// requested identifier.
var ErrItemNotFound = errors.New("inventory item not found")

// ErrActiveReservations is returned when equipment cannot be marked
// AVAILABLE because a confirmed reservation still covers the present
// moment or a future one.
var ErrActiveReservations = errors.New("equipment has active reservations")

// ErrEquipmentInUse is returned when equipment cannot be deleted
// because confirmed reservations reference it.
var ErrEquipmentInUse = errors.New("equipment is referenced by confirmed reservations")

// ErrInsufficientStock is returned when a stock-out movement would
// drive an item's quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrDuplicateSerial is returned when equipment creation collides with
// an existing serial number.
var ErrDuplicateSerial = errors.New("serial number already exists")

// ErrDuplicateSKU is returned when inventory item creation collides
// with an existing SKU.
var ErrDuplicateSKU = errors.New("sku already exists")
