package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-resource-booking/internal/config"
	"github.com/iliyamo/lab-resource-booking/internal/model"
	"github.com/iliyamo/lab-resource-booking/internal/repository"
)

var reservationTestCols = []string{
	"id", "user_id", "equipment_id", "starts_at", "ends_at", "purpose", "status",
	"approved_by", "rejection_reason", "created_at", "updated_at",
}

// Approving a request that sat in the queue while staff pulled the
// equipment for MAINTENANCE must fail instead of silently flipping the
// equipment to BOOKED.
func TestReservationApprove_RefusesUnbookableEquipment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)FROM reservations WHERE id = .+FOR UPDATE`).
		WithArgs(15).
		WillReturnRows(sqlmock.NewRows(reservationTestCols).
			AddRow(15, 4, 3, start, end, "Laser alignment", "PENDING", nil, nil, start, start))
	mock.ExpectQuery(`SELECT status FROM equipment WHERE id = .+FOR UPDATE`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("MAINTENANCE"))
	mock.ExpectRollback()

	h := NewReservationHandler(config.Config{},
		repository.NewReservationRepo(db), repository.NewEquipmentRepo(db))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations/15/approve", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("15")
	c.Set("user_id", uint64(7))
	c.Set("role", model.RoleStaff)

	if err := h.Approve(c); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for MAINTENANCE equipment, got %d: %s", rec.Code, rec.Body.String())
	}
	// The reservation stays PENDING and the equipment keeps its status;
	// neither UPDATE was expected above.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("statement order: %v", err)
	}
}
