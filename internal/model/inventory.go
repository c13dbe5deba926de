package model

import "time"

// InventoryItem is a consumable or stockable article tracked by the
// lab.  Quantity never goes negative; stock-out movements that would
// drive it below zero are rejected.  When quantity falls to or below
// MinQuantity a low-stock notification is dispatched to staff.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – article name.
//  Description – free-text description.
//  Category    – CHEMICALS, GLASSWARE, EQUIPMENT, CONSUMABLES or OTHER.
//  SKU         – unique stock keeping unit.
//  Unit        – measuring unit (pieces, liters, kg).
//  Quantity    – current stock on hand, never negative.
//  MinQuantity – restock threshold.
//  Location    – storage location.
//  PriceCents  – price per unit in cents.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type InventoryItem struct {
	ID          uint64    // inventory_items.id
	Name        string    // inventory_items.name
	Description string    // inventory_items.description
	Category    string    // inventory_items.category
	SKU         string    // inventory_items.sku
	Unit        string    // inventory_items.unit
	Quantity    int64     // inventory_items.quantity
	MinQuantity int64     // inventory_items.min_quantity
	Location    string    // inventory_items.location
	PriceCents  uint32    // inventory_items.price_cents
	CreatedAt   time.Time // inventory_items.created_at
	UpdatedAt   time.Time // inventory_items.updated_at
}

// StockMovement records a single change to an item's stock level.  IN
// adds quantity, OUT subtracts it (rejected when the result would be
// negative) and ADJUST sets an absolute level after a stocktake.
//
// Fields:
//  ID          – primary key identifier.
//  ItemID      – item affected.
//  Type        – IN, OUT or ADJUST.
//  Quantity    – amount moved, or the absolute level for ADJUST.
//  Reference   – PO or requisition number, optional.
//  Notes       – free-text notes.
//  PerformedBy – staff member who recorded the movement.
//  CreatedAt   – creation timestamp.
type StockMovement struct {
	ID          uint64    // stock_movements.id
	ItemID      uint64    // stock_movements.item_id
	Type        string    // stock_movements.movement_type
	Quantity    int64     // stock_movements.quantity
	Reference   string    // stock_movements.reference
	Notes       string    // stock_movements.notes
	PerformedBy uint64    // stock_movements.performed_by
	CreatedAt   time.Time // stock_movements.created_at
}

// Stock movement types stored in stock_movements.movement_type.
const (
	MovementIn     = "IN"
	MovementOut    = "OUT"
	MovementAdjust = "ADJUST"
)
