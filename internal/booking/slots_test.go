package booking

import "testing"

func TestGenerateSlots_HalfHour(t *testing.T) {
	slots := GenerateSlots(8, 10, 30)
	want := []string{"08:00", "08:30", "09:00", "09:30", "10:00"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(slots), slots)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, want[i], slots[i])
		}
	}
}

func TestGenerateSlots_EndHourInclusive(t *testing.T) {
	slots := GenerateSlots(9, 17, 60)
	if len(slots) == 0 || slots[len(slots)-1] != "17:00" {
		t.Fatalf("ladder must include the end hour, got %v", slots)
	}
}

func TestGenerateSlots_IntervalSkipsEndHour(t *testing.T) {
	// 45-minute spacing from 08:00 never lands on 10:00 exactly.
	slots := GenerateSlots(8, 10, 45)
	want := []string{"08:00", "08:45", "09:30"}
	if len(slots) != len(want) {
		t.Fatalf("expected %v, got %v", want, slots)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, want[i], slots[i])
		}
	}
}

func TestGenerateSlots_InvalidArgs(t *testing.T) {
	cases := [][3]int{
		{10, 8, 30},  // inverted hours
		{8, 10, 0},   // zero interval
		{8, 10, -15}, // negative interval
		{-1, 10, 30}, // negative start hour
		{8, 24, 30},  // out-of-range end hour
	}
	for i, c := range cases {
		if slots := GenerateSlots(c[0], c[1], c[2]); len(slots) != 0 {
			t.Fatalf("case %d: expected empty ladder, got %v", i, slots)
		}
	}
}

func TestGenerateSlots_SingleHour(t *testing.T) {
	slots := GenerateSlots(12, 12, 30)
	if len(slots) != 1 || slots[0] != "12:00" {
		t.Fatalf("expected single 12:00 slot, got %v", slots)
	}
}
