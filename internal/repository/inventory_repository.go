package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/lab-resource-booking/internal/model"
)

// InventoryRepo persists inventory items and their stock movements.
// Movements are applied under a row lock on the item so the quantity
// check and the write cannot interleave; a stock-out that would drive
// the quantity below zero is rejected with ErrInsufficientStock.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo returns a new InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

const itemCols = `id, name, description, category, sku, unit, quantity, min_quantity, location, price_cents, created_at, updated_at`

func scanItem(row interface{ Scan(...interface{}) error }, it *model.InventoryItem) error {
	return row.Scan(&it.ID, &it.Name, &it.Description, &it.Category, &it.SKU, &it.Unit,
		&it.Quantity, &it.MinQuantity, &it.Location, &it.PriceCents, &it.CreatedAt, &it.UpdatedAt)
}

// Create inserts a new inventory item and populates its generated ID.
// A duplicate SKU yields ErrDuplicateSKU.
func (r *InventoryRepo) Create(ctx context.Context, it *model.InventoryItem) error {
	const q = `INSERT INTO inventory_items (name, description, category, sku, unit, quantity, min_quantity, location, price_cents)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, it.Name, it.Description, it.Category, it.SKU, it.Unit,
		it.Quantity, it.MinQuantity, it.Location, it.PriceCents)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateSKU
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// GetByID returns a single item.  ErrItemNotFound is returned when no
// row matches.
func (r *InventoryRepo) GetByID(ctx context.Context, id uint64) (*model.InventoryItem, error) {
	const q = `SELECT ` + itemCols + ` FROM inventory_items WHERE id = ?`
	var it model.InventoryItem
	if err := scanItem(r.db.QueryRowContext(ctx, q, id), &it); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}

// List returns all items ordered by name, optionally filtered by
// category.
func (r *InventoryRepo) List(ctx context.Context, category string) ([]model.InventoryItem, error) {
	q := `SELECT ` + itemCols + ` FROM inventory_items`
	args := []interface{}{}
	if category != "" {
		q += ` WHERE category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY name, id`
	return r.listItems(ctx, q, args...)
}

// ListLowStock returns items whose quantity has fallen to or below
// their minimum threshold.
func (r *InventoryRepo) ListLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	const q = `SELECT ` + itemCols + ` FROM inventory_items WHERE quantity <= min_quantity ORDER BY name, id`
	return r.listItems(ctx, q)
}

func (r *InventoryRepo) listItems(ctx context.Context, q string, args ...interface{}) ([]model.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.InventoryItem, 0)
	for rows.Next() {
		var it model.InventoryItem
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites an item's descriptive attributes.  Quantity is
// managed exclusively through ApplyMovement.
func (r *InventoryRepo) Update(ctx context.Context, it *model.InventoryItem) error {
	const q = `UPDATE inventory_items SET name = ?, description = ?, category = ?, sku = ?, unit = ?,
               min_quantity = ?, location = ?, price_cents = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, it.Name, it.Description, it.Category, it.SKU, it.Unit,
		it.MinQuantity, it.Location, it.PriceCents, it.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateSKU
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var id uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM inventory_items WHERE id = ?`, it.ID).Scan(&id); err != nil {
			if err == sql.ErrNoRows {
				return ErrItemNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes an item and its movement history (cascade).
func (r *InventoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// ApplyMovement records a stock movement and updates the item's
// quantity atomically.  IN adds, OUT subtracts and is rejected with
// ErrInsufficientStock when the result would be negative, ADJUST sets
// an absolute level.  It returns the item state after the movement so
// the handler can raise a low-stock alert.
func (r *InventoryRepo) ApplyMovement(ctx context.Context, m *model.StockMovement) (*model.InventoryItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const lockQ = `SELECT ` + itemCols + ` FROM inventory_items WHERE id = ? FOR UPDATE`
	var it model.InventoryItem
	if err := scanItem(tx.QueryRowContext(ctx, lockQ, m.ItemID), &it); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	newQty := it.Quantity
	switch m.Type {
	case model.MovementIn:
		newQty += m.Quantity
	case model.MovementOut:
		newQty -= m.Quantity
		if newQty < 0 {
			return nil, ErrInsufficientStock
		}
	case model.MovementAdjust:
		newQty = m.Quantity
		if newQty < 0 {
			return nil, ErrInsufficientStock
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE inventory_items SET quantity = ? WHERE id = ?`, newQty, m.ItemID); err != nil {
		return nil, err
	}
	const insQ = `INSERT INTO stock_movements (item_id, movement_type, quantity, reference, notes, performed_by)
                  VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, insQ, m.ItemID, m.Type, m.Quantity, m.Reference, m.Notes, m.PerformedBy)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	m.ID = uint64(id)
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	it.Quantity = newQty
	return &it, nil
}

// ListMovements returns the movement history for an item, newest first.
func (r *InventoryRepo) ListMovements(ctx context.Context, itemID uint64) ([]model.StockMovement, error) {
	const q = `SELECT id, item_id, movement_type, quantity, reference, notes, performed_by, created_at
               FROM stock_movements WHERE item_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.StockMovement, 0)
	for rows.Next() {
		var m model.StockMovement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Type, &m.Quantity, &m.Reference, &m.Notes, &m.PerformedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
