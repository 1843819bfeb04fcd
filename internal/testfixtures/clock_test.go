package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	advanced := clock.Advance(90 * time.Minute)
	if !advanced.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("unexpected advanced time: %v", advanced)
	}
	if !clock.Now().Equal(advanced) {
		t.Fatalf("Now = %v, want %v", clock.Now(), advanced)
	}

	reset := start.Add(24 * time.Hour)
	clock.Set(reset)
	if !clock.Now().Equal(reset) {
		t.Fatalf("Now = %v, want %v", clock.Now(), reset)
	}
}

func TestNilClockFallsBackToWallClock(t *testing.T) {
	var clock *Clock
	before := time.Now()
	got := clock.NowFunc()()
	if got.Before(before) {
		t.Fatalf("expected wall clock time, got %v", got)
	}
}
