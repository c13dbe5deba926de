package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/lab-resource-booking/internal/booking"
	"github.com/iliyamo/lab-resource-booking/internal/model"
)

// EquipmentRepo provides CRUD operations for bookable lab equipment and
// enforces the registry guard: equipment may not be marked AVAILABLE
// while confirmed reservations still cover the present or the future,
// and may not be deleted while confirmed reservations reference it.
type EquipmentRepo struct {
	db *sql.DB
}

// NewEquipmentRepo returns a new EquipmentRepo bound to the given database.
func NewEquipmentRepo(db *sql.DB) *EquipmentRepo { return &EquipmentRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *EquipmentRepo) DB() *sql.DB { return r.db }

const equipmentCols = "id, name, description, category, serial_number, location, status, created_at, updated_at"

func scanEquipment(row interface{ Scan(...interface{}) error }, e *model.Equipment) error {
	return row.Scan(&e.ID, &e.Name, &e.Description, &e.Category, &e.SerialNumber,
		&e.Location, &e.Status, &e.CreatedAt, &e.UpdatedAt)
}

// Create inserts a new equipment row with status AVAILABLE and returns
// its generated ID.  A duplicate serial number yields ErrDuplicateSerial.
func (r *EquipmentRepo) Create(ctx context.Context, e *model.Equipment) error {
	const q = `INSERT INTO equipment (name, description, category, serial_number, location, status)
               VALUES (?, ?, ?, ?, ?, ?)`
	if e.Status == "" {
		e.Status = booking.EquipmentAvailable
	}
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Description, e.Category, e.SerialNumber, e.Location, e.Status)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateSerial
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByID returns a single equipment row.  ErrEquipmentNotFound is
// returned when no row matches.
func (r *EquipmentRepo) GetByID(ctx context.Context, id uint64) (*model.Equipment, error) {
	const q = `SELECT ` + equipmentCols + ` FROM equipment WHERE id = ?`
	var e model.Equipment
	if err := scanEquipment(r.db.QueryRowContext(ctx, q, id), &e); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}
	return &e, nil
}

// List returns all equipment ordered by name.  When status is non-empty
// only rows with that status are returned.
func (r *EquipmentRepo) List(ctx context.Context, status string) ([]model.Equipment, error) {
	q := `SELECT ` + equipmentCols + ` FROM equipment`
	args := []interface{}{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Equipment, 0)
	for rows.Next() {
		var e model.Equipment
		if err := scanEquipment(rows, &e); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites the descriptive attributes of an equipment row.  The
// status column is managed separately through SetStatus and the
// reservation lifecycle.
func (r *EquipmentRepo) Update(ctx context.Context, e *model.Equipment) error {
	const q = `UPDATE equipment SET name = ?, description = ?, category = ?, serial_number = ?, location = ?
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Description, e.Category, e.SerialNumber, e.Location, e.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateSerial
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 for no-op updates; confirm existence.
		var id uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM equipment WHERE id = ?`, e.ID).Scan(&id); err != nil {
			if err == sql.ErrNoRows {
				return ErrEquipmentNotFound
			}
			return err
		}
	}
	return nil
}

// SetStatus applies an administrative status override inside its own
// transaction.  A transition to AVAILABLE is refused with
// ErrActiveReservations while any confirmed reservation for the
// equipment ends in the future; MAINTENANCE and UNAVAILABLE overrides
// are unconditional.
func (r *EquipmentRepo) SetStatus(ctx context.Context, id uint64, newStatus string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Lock the equipment row so a concurrent approve cannot slip a new
	// confirmed reservation in between the check and the write.
	var cur string
	err = tx.QueryRowContext(ctx, `SELECT status FROM equipment WHERE id = ? FOR UPDATE`, id).Scan(&cur)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrEquipmentNotFound
		}
		return err
	}
	if newStatus == booking.EquipmentAvailable {
		var n int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM reservations WHERE equipment_id = ? AND status = ? AND ends_at > UTC_TIMESTAMP()`,
			id, booking.StatusConfirmed).Scan(&n)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrActiveReservations
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE equipment SET status = ? WHERE id = ?`, newStatus, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SetStatusTx updates the status column within an existing transaction.
// The reservation lifecycle uses this after confirming or cancelling a
// booking; the guard is the caller's responsibility there because the
// surrounding transaction already holds the equipment row lock.
func (r *EquipmentRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, newStatus string) error {
	_, err := tx.ExecContext(ctx, `UPDATE equipment SET status = ? WHERE id = ?`, newStatus, id)
	return err
}

// LockTx acquires a row lock on the equipment inside the given
// transaction and returns its current status.  All reservation
// create/approve/cancel paths funnel through this lock so that two
// concurrent requests for the same equipment serialize.
func (r *EquipmentRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (string, error) {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM equipment WHERE id = ? FOR UPDATE`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return "", ErrEquipmentNotFound
	}
	return status, err
}

// Delete removes an equipment row.  ErrEquipmentInUse is returned while
// confirmed reservations still reference the equipment.
func (r *EquipmentRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var exists uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM equipment WHERE id = ? FOR UPDATE`, id).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrEquipmentNotFound
		}
		return err
	}
	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE equipment_id = ? AND status = ?`,
		id, booking.StatusConfirmed).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrEquipmentInUse
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
