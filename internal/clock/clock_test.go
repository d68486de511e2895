package clock

import (
	"testing"

	"uistd/pkg/types"
)

func newTestClock(t *testing.T) *Clock {
	t.Helper()
	c, err := New([]int64{100, 101, 102}, types.Daily)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNewRejectsEmptySchedule(t *testing.T) {
	if _, err := New(nil, types.Daily); err == nil {
		t.Fatal("New(nil) error = nil, want error")
	}
}

func TestNowStartsAtFirstEntry(t *testing.T) {
	c := newTestClock(t)
	if got := c.Now(); got != 100 {
		t.Errorf("Now() = %v, want 100", got)
	}
}

func TestTickAdvances(t *testing.T) {
	c := newTestClock(t)
	if !c.Tick() {
		t.Fatal("Tick() = false, want true")
	}
	if got := c.Now(); got != 101 {
		t.Errorf("Now() = %v, want 101", got)
	}
}

func TestTickStopsAtEnd(t *testing.T) {
	c := newTestClock(t)
	c.Tick()
	c.Tick()
	if c.HasNext() {
		t.Fatal("HasNext() = true, want false at end of schedule")
	}
	if c.Tick() {
		t.Fatal("Tick() = true, want false once exhausted")
	}
	if got := c.Now(); got != 102 {
		t.Errorf("Now() = %v, want 102 (unchanged after exhausted tick)", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := newTestClock(t)
	clone := c.Clone()
	c.Tick()
	if clone.Now() != 100 {
		t.Errorf("clone.Now() = %v, want 100 (unaffected by original's tick)", clone.Now())
	}
	if c.Now() != 101 {
		t.Errorf("c.Now() = %v, want 101", c.Now())
	}
}

func TestPeekReturnsRemainingSchedule(t *testing.T) {
	c := newTestClock(t)
	c.Tick()
	got := c.Peek()
	want := []int64{101, 102}
	if len(got) != len(want) {
		t.Fatalf("Peek() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Peek()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
