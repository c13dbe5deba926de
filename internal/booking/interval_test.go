package booking

import (
	"testing"
	"time"
)

func ts(h, m int) time.Time {
	return time.Date(2025, 6, 1, h, m, 0, 0, time.UTC)
}

func TestOverlaps_Intersecting(t *testing.T) {
	if !Overlaps(ts(10, 0), ts(12, 0), ts(11, 0), ts(13, 0)) {
		t.Fatalf("expected overlap for [10,12) vs [11,13)")
	}
}

func TestOverlaps_Contained(t *testing.T) {
	if !Overlaps(ts(9, 0), ts(17, 0), ts(10, 0), ts(11, 0)) {
		t.Fatalf("expected overlap when one interval contains the other")
	}
}

func TestOverlaps_Disjoint(t *testing.T) {
	if Overlaps(ts(8, 0), ts(9, 0), ts(14, 0), ts(15, 0)) {
		t.Fatalf("expected no overlap for disjoint intervals")
	}
}

func TestOverlaps_BackToBackAllowed(t *testing.T) {
	// [10:00,11:00) and [11:00,12:00) share an endpoint but not an instant.
	if Overlaps(ts(10, 0), ts(11, 0), ts(11, 0), ts(12, 0)) {
		t.Fatalf("back-to-back intervals must not conflict")
	}
	if Overlaps(ts(11, 0), ts(12, 0), ts(10, 0), ts(11, 0)) {
		t.Fatalf("back-to-back intervals must not conflict (reversed)")
	}
}

func TestOverlaps_Symmetry(t *testing.T) {
	cases := [][4]time.Time{
		{ts(10, 0), ts(12, 0), ts(11, 0), ts(13, 0)},
		{ts(10, 0), ts(11, 0), ts(11, 0), ts(12, 0)},
		{ts(8, 30), ts(9, 45), ts(9, 0), ts(9, 30)},
		{ts(7, 0), ts(8, 0), ts(20, 0), ts(21, 0)},
	}
	for i, c := range cases {
		ab := Overlaps(c[0], c[1], c[2], c[3])
		ba := Overlaps(c[2], c[3], c[0], c[1])
		if ab != ba {
			t.Fatalf("case %d: overlap not symmetric: ab=%v ba=%v", i, ab, ba)
		}
	}
}

func TestValidateInterval_OK(t *testing.T) {
	now := ts(9, 0)
	if err := ValidateInterval(ts(10, 0), ts(12, 0), now); err != nil {
		t.Fatalf("expected valid interval, got %v", err)
	}
}

func TestValidateInterval_Inverted(t *testing.T) {
	now := ts(9, 0)
	if err := ValidateInterval(ts(12, 0), ts(10, 0), now); err != ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestValidateInterval_Empty(t *testing.T) {
	now := ts(9, 0)
	if err := ValidateInterval(ts(10, 0), ts(10, 0), now); err != ErrInvalidInterval {
		t.Fatalf("expected ErrInvalidInterval for zero-length interval, got %v", err)
	}
}

func TestValidateInterval_Backdated(t *testing.T) {
	now := ts(11, 0)
	if err := ValidateInterval(ts(10, 0), ts(12, 0), now); err != ErrPastStart {
		t.Fatalf("expected ErrPastStart, got %v", err)
	}
}

func TestValidateInterval_StartsExactlyNow(t *testing.T) {
	now := ts(10, 0)
	if err := ValidateInterval(ts(10, 0), ts(12, 0), now); err != nil {
		t.Fatalf("an interval starting at the submission instant is not backdated, got %v", err)
	}
}
