package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/lab-resource-booking/internal/booking"
	"github.com/iliyamo/lab-resource-booking/internal/model"
)

// ReservationRepo is the reservation ledger: the sole source of truth
// for overlap detection.  Mutating operations are offered as ...Tx
// variants so handlers can wrap the availability check and the write in
// one transaction holding the equipment row lock; the plain check-then-
// save pattern has a race window between the overlap scan and the
// insert.  All timestamp fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationCols = `id, user_id, equipment_id, starts_at, ends_at, purpose, status,
               approved_by, rejection_reason, created_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }, res *model.Reservation) error {
	var approvedBy sql.NullInt64
	var reason sql.NullString
	if err := row.Scan(&res.ID, &res.UserID, &res.EquipmentID, &res.StartsAt, &res.EndsAt,
		&res.Purpose, &res.Status, &approvedBy, &reason, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}
	if approvedBy.Valid {
		v := uint64(approvedBy.Int64)
		res.ApprovedBy = &v
	}
	if reason.Valid {
		s := reason.String
		res.RejectionReason = &s
	}
	return nil
}

// CountOverlappingTx counts confirmed reservations on the equipment
// whose half-open interval intersects [start, end), excluding the
// reservation with excludeID when non-zero.  Back-to-back intervals do
// not count as overlapping.  Callers must already hold the equipment
// row lock in tx.
func (r *ReservationRepo) CountOverlappingTx(ctx context.Context, tx *sql.Tx, equipmentID uint64, start, end time.Time, excludeID uint64) (int, error) {
	q := `SELECT COUNT(*) FROM reservations
          WHERE equipment_id = ? AND status = ? AND starts_at < ? AND ends_at > ?`
	args := []interface{}{equipmentID, booking.StatusConfirmed, end, start}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	var n int
	err := tx.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record.  The caller must commit or rollback.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (user_id, equipment_id, starts_at, ends_at, purpose, status, approved_by)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	var approvedBy interface{}
	if res.ApprovedBy != nil {
		approvedBy = *res.ApprovedBy
	}
	result, err := tx.ExecContext(ctx, q, res.UserID, res.EquipmentID, res.StartsAt, res.EndsAt,
		res.Purpose, res.Status, approvedBy)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	return scanReservation(tx.QueryRowContext(ctx, sel, res.ID), res)
}

// GetByID returns a single reservation.  ErrReservationNotFound is
// returned when no row matches.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	var res model.Reservation
	if err := scanReservation(r.db.QueryRowContext(ctx, q, id), &res); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetByIDTx is GetByID inside a transaction, locking the reservation
// row so lifecycle transitions serialize per reservation.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ? FOR UPDATE`
	var res model.Reservation
	if err := scanReservation(tx.QueryRowContext(ctx, q, id), &res); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// UpdateStatusTx rewrites the status column and the approval metadata
// within an existing transaction.  approvedBy and reason may be nil
// when the transition carries no approver or rejection reason.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string, approvedBy *uint64, reason *string) error {
	const q = `UPDATE reservations SET status = ?,
               approved_by = COALESCE(?, approved_by),
               rejection_reason = COALESCE(?, rejection_reason)
               WHERE id = ?`
	var ab interface{}
	if approvedBy != nil {
		ab = *approvedBy
	}
	var rs interface{}
	if reason != nil {
		rs = *reason
	}
	_, err := tx.ExecContext(ctx, q, status, ab, rs, id)
	return err
}

// HasConfirmedEndingAfterTx reports whether any confirmed reservation
// for the equipment, other than excludeID, still ends after the given
// instant.  The cancellation path uses this to decide whether the
// equipment reverts to AVAILABLE.
func (r *ReservationRepo) HasConfirmedEndingAfterTx(ctx context.Context, tx *sql.Tx, equipmentID uint64, at time.Time, excludeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations
               WHERE equipment_id = ? AND status = ? AND ends_at > ? AND id <> ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, equipmentID, booking.StatusConfirmed, at, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByUser returns all reservations belonging to a user, newest
// first.  When no reservations exist an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, userID)
}

// ListAll returns every reservation for staff review, newest first.
// When status is non-empty only reservations in that status are
// returned.
func (r *ReservationRepo) ListAll(ctx context.Context, status string) ([]model.Reservation, error) {
	q := `SELECT ` + reservationCols + ` FROM reservations`
	args := []interface{}{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, args...)
}

// ListByEquipment returns confirmed and pending reservations for one
// piece of equipment ordered by start time, for availability displays.
func (r *ReservationRepo) ListByEquipment(ctx context.Context, equipmentID uint64) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations
               WHERE equipment_id = ? AND status IN (?, ?) ORDER BY starts_at`
	return r.list(ctx, q, equipmentID, booking.StatusPending, booking.StatusConfirmed)
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteExpired flips confirmed reservations whose end instant has
// passed to COMPLETED and reverts equipment whose remaining confirmed
// reservations have all ended to AVAILABLE.  It returns the number of
// reservations completed.  The sweep is staff-triggered rather than a
// background job.
func (r *ReservationRepo) CompleteExpired(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ? WHERE status = ? AND ends_at <= UTC_TIMESTAMP()`,
		booking.StatusCompleted, booking.StatusConfirmed)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	// Free equipment left BOOKED with no confirmed reservation still ahead.
	_, err = tx.ExecContext(ctx,
		`UPDATE equipment e SET e.status = ?
         WHERE e.status = ? AND NOT EXISTS (
             SELECT 1 FROM reservations x
             WHERE x.equipment_id = e.id AND x.status = ? AND x.ends_at > UTC_TIMESTAMP())`,
		booking.EquipmentAvailable, booking.EquipmentBooked, booking.StatusConfirmed)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return n, nil
}

// EquipmentUsage aggregates the reservation history of one piece of
// equipment for staff reporting.
type EquipmentUsage struct {
	EquipmentID   uint64
	Reservations  int64
	BookedMinutes int64
}

// UsageSummary returns per-equipment totals over confirmed and
// completed reservations, most reserved first.  Pending and rejected
// requests never held the equipment and are excluded.
func (r *ReservationRepo) UsageSummary(ctx context.Context) ([]EquipmentUsage, error) {
	const q = `SELECT equipment_id, COUNT(*) AS cnt,
               COALESCE(SUM(TIMESTAMPDIFF(MINUTE, starts_at, ends_at)), 0)
               FROM reservations WHERE status IN (?, ?)
               GROUP BY equipment_id ORDER BY cnt DESC, equipment_id`
	rows, err := r.db.QueryContext(ctx, q, booking.StatusConfirmed, booking.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]EquipmentUsage, 0)
	for rows.Next() {
		var u EquipmentUsage
		if err := rows.Scan(&u.EquipmentID, &u.Reservations, &u.BookedMinutes); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
