package booking

import "testing"

func TestTransition_PendingEdges(t *testing.T) {
	for _, to := range []string{StatusConfirmed, StatusRejected, StatusCancelled} {
		if err := Transition(StatusPending, to); err != nil {
			t.Fatalf("PENDING -> %s should be allowed, got %v", to, err)
		}
	}
	if err := Transition(StatusPending, StatusCompleted); err != ErrInvalidTransition {
		t.Fatalf("PENDING -> COMPLETED must be rejected, got %v", err)
	}
}

func TestTransition_ConfirmedEdges(t *testing.T) {
	if err := Transition(StatusConfirmed, StatusCancelled); err != nil {
		t.Fatalf("CONFIRMED -> CANCELLED should be allowed, got %v", err)
	}
	if err := Transition(StatusConfirmed, StatusCompleted); err != nil {
		t.Fatalf("CONFIRMED -> COMPLETED should be allowed, got %v", err)
	}
	if err := Transition(StatusConfirmed, StatusRejected); err != ErrInvalidTransition {
		t.Fatalf("CONFIRMED -> REJECTED must be rejected, got %v", err)
	}
}

func TestTransition_TerminalStatesFrozen(t *testing.T) {
	terminals := []string{StatusRejected, StatusCancelled, StatusCompleted}
	targets := []string{StatusPending, StatusConfirmed, StatusRejected, StatusCancelled, StatusCompleted}
	for _, from := range terminals {
		if !IsTerminal(from) {
			t.Fatalf("%s should be terminal", from)
		}
		for _, to := range targets {
			if CanTransition(from, to) {
				t.Fatalf("%s -> %s must be rejected", from, to)
			}
		}
	}
}

func TestTransition_RejectTwice(t *testing.T) {
	// First rejection succeeds, the second sees a REJECTED reservation and
	// must fail without changing anything.
	status := StatusPending
	if err := Transition(status, StatusRejected); err != nil {
		t.Fatalf("first reject failed: %v", err)
	}
	status = StatusRejected
	if err := Transition(status, StatusRejected); err != ErrInvalidTransition {
		t.Fatalf("second reject must return ErrInvalidTransition, got %v", err)
	}
	if status != StatusRejected {
		t.Fatalf("status changed by failed transition: %s", status)
	}
}

func TestTransition_UnknownStatus(t *testing.T) {
	if CanTransition("GARBAGE", StatusConfirmed) {
		t.Fatalf("unknown source status must not transition")
	}
	if CanTransition(StatusPending, "GARBAGE") {
		t.Fatalf("unknown target status must not transition")
	}
}

func TestBookable(t *testing.T) {
	for _, s := range []string{EquipmentAvailable, EquipmentBooked} {
		if !Bookable(s) {
			t.Fatalf("%s equipment should accept new confirmed reservations", s)
		}
	}
	for _, s := range []string{EquipmentMaintenance, EquipmentUnavailable} {
		if Bookable(s) {
			t.Fatalf("%s equipment must refuse new confirmed reservations", s)
		}
	}
}

func TestShouldRevert_LastConfirmedCancelled(t *testing.T) {
	// Cancelling the only confirmed reservation frees BOOKED equipment.
	if !ShouldRevert(EquipmentBooked, false) {
		t.Fatalf("BOOKED equipment with nothing ahead must revert to AVAILABLE")
	}
}

func TestShouldRevert_OtherConfirmedAhead(t *testing.T) {
	// Another confirmed reservation still ends in the future, so the
	// equipment stays BOOKED.
	if ShouldRevert(EquipmentBooked, true) {
		t.Fatalf("equipment must stay BOOKED while another confirmed reservation lies ahead")
	}
}

func TestShouldRevert_StaffOverrideSurvives(t *testing.T) {
	// MAINTENANCE and UNAVAILABLE are set by staff, not by the booking
	// flow, and a cancellation must not undo them.
	for _, s := range []string{EquipmentMaintenance, EquipmentUnavailable} {
		if ShouldRevert(s, false) {
			t.Fatalf("%s must survive a cancellation", s)
		}
	}
	if ShouldRevert(EquipmentAvailable, false) {
		t.Fatalf("AVAILABLE equipment has no marker to revert")
	}
}

func TestValidEquipmentStatus(t *testing.T) {
	for _, s := range []string{EquipmentAvailable, EquipmentBooked, EquipmentMaintenance, EquipmentUnavailable} {
		if !ValidEquipmentStatus(s) {
			t.Fatalf("%s should be a valid equipment status", s)
		}
	}
	if ValidEquipmentStatus("BROKEN") {
		t.Fatalf("unrecognised equipment status accepted")
	}
}
