package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/lab-resource-booking/internal/booking"
	"github.com/iliyamo/lab-resource-booking/internal/model"
)

// LabSessionRepo persists lab sessions and their participant rosters.
// Registration runs inside a transaction that locks the session row, so
// the capacity check and the roster insert cannot interleave with a
// concurrent registration for the same session.
type LabSessionRepo struct {
	db *sql.DB
}

// NewLabSessionRepo returns a new LabSessionRepo bound to the given database.
func NewLabSessionRepo(db *sql.DB) *LabSessionRepo { return &LabSessionRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *LabSessionRepo) DB() *sql.DB { return r.db }

const sessionCols = `id, title, description, room, created_by, starts_at, ends_at, capacity, status, created_at, updated_at`

func scanSession(row interface{ Scan(...interface{}) error }, s *model.LabSession) error {
	return row.Scan(&s.ID, &s.Title, &s.Description, &s.Room, &s.CreatedBy,
		&s.StartsAt, &s.EndsAt, &s.Capacity, &s.Status, &s.CreatedAt, &s.UpdatedAt)
}

// FindOverlappingRoomTx returns non-cancelled sessions in the given
// room whose interval intersects [start, end), excluding the session
// with excludeID when non-zero.  The overlap rule mirrors the equipment
// conflict check at full timestamp precision.  Matching rows are locked
// FOR UPDATE; under InnoDB the index range scanned on (room, starts_at)
// takes next-key locks even when empty, so a concurrent create for the
// same room and interval blocks until the caller's transaction ends
// instead of slipping past the check.
func (r *LabSessionRepo) FindOverlappingRoomTx(ctx context.Context, tx *sql.Tx, room string, start, end time.Time, excludeID uint64) ([]model.LabSession, error) {
	q := `SELECT ` + sessionCols + ` FROM lab_sessions
          WHERE room = ? AND status <> ? AND starts_at < ? AND ends_at > ?`
	args := []interface{}{room, booking.SessionCancelled, end, start}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	q += ` FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var overlaps []model.LabSession
	for rows.Next() {
		var s model.LabSession
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		overlaps = append(overlaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return overlaps, nil
}

// CreateTx inserts a new session row within the caller's transaction
// and populates the generated ID.  Paired with FindOverlappingRoomTx so
// the room conflict check and the insert commit or roll back together.
func (r *LabSessionRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.LabSession) error {
	const q = `INSERT INTO lab_sessions (title, description, room, created_by, starts_at, ends_at, capacity, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if s.Status == "" {
		s.Status = booking.SessionOpen
	}
	res, err := tx.ExecContext(ctx, q, s.Title, s.Description, s.Room, s.CreatedBy,
		s.StartsAt, s.EndsAt, s.Capacity, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID returns a single session.  ErrSessionNotFound is returned
// when no row matches.
func (r *LabSessionRepo) GetByID(ctx context.Context, id uint64) (*model.LabSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM lab_sessions WHERE id = ?`
	var s model.LabSession
	if err := scanSession(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByIDTx loads a session inside a transaction with a row lock, so
// the roster guard and the participant write serialize per session.
func (r *LabSessionRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.LabSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM lab_sessions WHERE id = ? FOR UPDATE`
	var s model.LabSession
	if err := scanSession(tx.QueryRowContext(ctx, q, id), &s); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListUpcoming returns sessions that have not yet ended, soonest first.
// Cancelled sessions are omitted.
func (r *LabSessionRepo) ListUpcoming(ctx context.Context) ([]model.LabSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM lab_sessions
               WHERE status <> ? AND ends_at > UTC_TIMESTAMP() ORDER BY starts_at, id`
	rows, err := r.db.QueryContext(ctx, q, booking.SessionCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.LabSession, 0)
	for rows.Next() {
		var s model.LabSession
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByCreator returns every session created by the given staff
// member, newest first.
func (r *LabSessionRepo) ListByCreator(ctx context.Context, creatorID uint64) ([]model.LabSession, error) {
	const q = `SELECT ` + sessionCols + ` FROM lab_sessions WHERE created_by = ? ORDER BY starts_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.LabSession, 0)
	for rows.Next() {
		var s model.LabSession
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ParticipantIDsTx returns the roster of a session in registration
// order, inside the caller's transaction.
func (r *LabSessionRepo) ParticipantIDsTx(ctx context.Context, tx *sql.Tx, sessionID uint64) ([]uint64, error) {
	const q = `SELECT user_id FROM session_participants WHERE session_id = ? ORDER BY registered_at, id`
	rows, err := tx.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// AddParticipantTx appends a user to the roster within the caller's
// transaction.  The unique (session_id, user_id) key backs up the
// duplicate check performed by the roster guard.
func (r *LabSessionRepo) AddParticipantTx(ctx context.Context, tx *sql.Tx, sessionID, userID uint64) error {
	const q = `INSERT INTO session_participants (session_id, user_id) VALUES (?, ?)`
	_, err := tx.ExecContext(ctx, q, sessionID, userID)
	return err
}

// RemoveParticipantTx deletes a user's roster entry within the caller's
// transaction and reports whether a row was removed.
func (r *LabSessionRepo) RemoveParticipantTx(ctx context.Context, tx *sql.Tx, sessionID, userID uint64) (bool, error) {
	const q = `DELETE FROM session_participants WHERE session_id = ? AND user_id = ?`
	res, err := tx.ExecContext(ctx, q, sessionID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Participants returns the roster with user names in registration
// order, for display.
func (r *LabSessionRepo) Participants(ctx context.Context, sessionID uint64) ([]model.SessionParticipant, error) {
	const q = `SELECT id, session_id, user_id, registered_at FROM session_participants
               WHERE session_id = ? ORDER BY registered_at, id`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.SessionParticipant, 0)
	for rows.Next() {
		var p model.SessionParticipant
		if err := rows.Scan(&p.ID, &p.SessionID, &p.UserID, &p.RegisteredAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus flips a session between roster states (OPEN, CLOSED,
// COMPLETED, CANCELLED).  Only the creator may change a session, which
// the handler verifies before calling.
func (r *LabSessionRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE lab_sessions SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM lab_sessions WHERE id = ?`, id).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return ErrSessionNotFound
			}
			return err
		}
	}
	return nil
}
