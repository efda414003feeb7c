package notifications

import (
	"testing"
	"time"
)

func newTestCenter(ttl time.Duration) (*Center, *time.Time) {
	center := NewCenter(ttl)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	center.now = func() time.Time { return now }
	return center, &now
}

func TestCenterExpiresToasts(t *testing.T) {
	t.Parallel()

	center, now := newTestCenter(3 * time.Second)
	center.Notify(LevelError, "no item matches scan code")

	if got := center.Active(); len(got) != 1 {
		t.Fatalf("active = %d, want 1", len(got))
	}

	*now = now.Add(2 * time.Second)
	if got := center.Active(); len(got) != 1 {
		t.Fatalf("active before ttl = %d, want 1", len(got))
	}

	*now = now.Add(2 * time.Second)
	if got := center.Active(); len(got) != 0 {
		t.Fatalf("active after ttl = %d, want 0", len(got))
	}
}

func TestCenterDrainClears(t *testing.T) {
	t.Parallel()

	center, _ := newTestCenter(3 * time.Second)
	center.Notify(LevelSuccess, "sale committed")
	center.Notify(LevelInfo, "session opened")

	drained := center.Drain()
	if len(drained) != 2 {
		t.Fatalf("drained = %d, want 2", len(drained))
	}
	if drained[0].Message != "sale committed" {
		t.Fatalf("unexpected order: %+v", drained)
	}
	if got := center.Active(); len(got) != 0 {
		t.Fatalf("active after drain = %d, want 0", len(got))
	}
}

func TestCenterDefaultTTL(t *testing.T) {
	t.Parallel()

	center := NewCenter(0)
	if center.ttl != 3*time.Second {
		t.Fatalf("ttl = %s, want default 3s", center.ttl)
	}
}
