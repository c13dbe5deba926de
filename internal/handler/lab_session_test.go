package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/lab-resource-booking/internal/model"
	"github.com/iliyamo/lab-resource-booking/internal/repository"
)

var sessionTestCols = []string{
	"id", "title", "description", "room", "created_by",
	"starts_at", "ends_at", "capacity", "status", "created_at", "updated_at",
}

func newCreateSessionContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))
	c.Set("role", model.RoleStaff)
	return c, rec
}

func sessionBody(room string, start, end time.Time) string {
	return fmt.Sprintf(`{"title":"Optics intro","room":%q,"starts_at":%q,"ends_at":%q,"capacity":12}`,
		room, start.Format(time.RFC3339), end.Format(time.RFC3339))
}

// Two concurrent creates for the same room must not both pass the
// overlap check, so the check and the insert have to run in one
// transaction with the scanned range locked.
func TestSessionCreate_ChecksAndInsertsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)FROM lab_sessions.+WHERE room = .+FOR UPDATE`).
		WithArgs("B-101", "CANCELLED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(sessionTestCols))
	mock.ExpectExec("INSERT INTO lab_sessions").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM lab_sessions WHERE id").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(sessionTestCols).
			AddRow(42, "Optics intro", "", "B-101", 7, start, end, 12, "OPEN", start, start))

	h := NewLabSessionHandler(repository.NewLabSessionRepo(db))
	c, rec := newCreateSessionContext(sessionBody("B-101", start, end))
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("statement order: %v", err)
	}
}

func TestSessionCreate_RoomConflictRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	end := start.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)FROM lab_sessions.+WHERE room = .+FOR UPDATE`).
		WithArgs("B-101", "CANCELLED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(sessionTestCols).
			AddRow(9, "Robotics club", "", "B-101", 3, start, end, 20, "OPEN", start, start))
	mock.ExpectRollback()

	h := NewLabSessionHandler(repository.NewLabSessionRepo(db))
	c, rec := newCreateSessionContext(sessionBody("B-101", start, end))
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on room conflict, got %d: %s", rec.Code, rec.Body.String())
	}
	// No INSERT was expected; an insert outside the conflict check would
	// fail the expectation ordering above.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("statement order: %v", err)
	}
}
