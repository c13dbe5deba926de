package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/lab-resource-booking/internal/booking"
)

func TestUsageSummary_AggregatesHeldReservations(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	// Only CONFIRMED and COMPLETED rows ever held the equipment; the
	// query filters on exactly those two statuses.
	mock.ExpectQuery(`(?s)SELECT equipment_id, COUNT.+FROM reservations.+GROUP BY equipment_id`).
		WithArgs(booking.StatusConfirmed, booking.StatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"equipment_id", "cnt", "minutes"}).
			AddRow(3, 5, 600).
			AddRow(1, 2, 90))

	repo := NewReservationRepo(db)
	got, err := repo.UsageSummary(context.Background())
	if err != nil {
		t.Fatalf("usage summary: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 aggregates, got %d", len(got))
	}
	if got[0].EquipmentID != 3 || got[0].Reservations != 5 || got[0].BookedMinutes != 600 {
		t.Fatalf("unexpected first aggregate: %+v", got[0])
	}
	if got[1].EquipmentID != 1 || got[1].Reservations != 2 || got[1].BookedMinutes != 90 {
		t.Fatalf("unexpected second aggregate: %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
