package booking

import "testing"

func TestCanRegister_CapacityScenario(t *testing.T) {
	// Session with capacity 2: U1 and U2 join, U3 is turned away, then a
	// cancellation frees the seat for U3.
	const capacity = 2
	roster := []uint64{}

	if err := CanRegister(SessionOpen, capacity, roster, 1); err != nil {
		t.Fatalf("register U1: %v", err)
	}
	roster = append(roster, 1)

	if err := CanRegister(SessionOpen, capacity, roster, 2); err != nil {
		t.Fatalf("register U2: %v", err)
	}
	roster = append(roster, 2)

	if err := CanRegister(SessionOpen, capacity, roster, 3); err != ErrSessionFull {
		t.Fatalf("expected ErrSessionFull for U3, got %v", err)
	}
	if len(roster) > capacity {
		t.Fatalf("roster exceeded capacity: %d", len(roster))
	}

	if err := CanCancelRegistration(roster, 1); err != nil {
		t.Fatalf("cancel U1: %v", err)
	}
	roster = roster[1:]

	if err := CanRegister(SessionOpen, capacity, roster, 3); err != nil {
		t.Fatalf("register U3 after cancellation: %v", err)
	}
}

func TestCanRegister_Duplicate(t *testing.T) {
	roster := []uint64{7, 8}
	if err := CanRegister(SessionOpen, 10, roster, 7); err != ErrAlreadyRegistered {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestCanRegister_ClosedSession(t *testing.T) {
	for _, status := range []string{SessionClosed, SessionCompleted, SessionCancelled} {
		if err := CanRegister(status, 10, nil, 1); err != ErrSessionClosed {
			t.Fatalf("status %s: expected ErrSessionClosed, got %v", status, err)
		}
	}
}

func TestCanRegister_ClosedBeatsFull(t *testing.T) {
	// A closed session reports closure even when also full.
	roster := []uint64{1, 2}
	if err := CanRegister(SessionClosed, 2, roster, 3); err != ErrSessionClosed {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestCanCancelRegistration_NotRegistered(t *testing.T) {
	if err := CanCancelRegistration([]uint64{1, 2}, 3); err != ErrNotRegistered {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
	if err := CanCancelRegistration(nil, 3); err != ErrNotRegistered {
		t.Fatalf("expected ErrNotRegistered on empty roster, got %v", err)
	}
}
