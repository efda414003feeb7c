package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int
		want int
	}{
		{in: -5, want: DefaultLimit},
		{in: 0, want: DefaultLimit},
		{in: 1, want: 1},
		{in: 40, want: 40},
		{in: MaxLimit, want: MaxLimit},
		{in: MaxLimit + 1, want: MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}

	if got := LimitWithBuffer(10); got != 11 {
		t.Errorf("LimitWithBuffer(10) = %d, want 11", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	// Fractional seconds exercise the dot inside the timestamp.
	in := Cursor{
		CreatedAt: time.Date(2026, time.January, 5, 9, 30, 12, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", out.CreatedAt, in.CreatedAt)
	}
	if out.ID != in.ID {
		t.Errorf("ID = %v, want %v", out.ID, in.ID)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	t.Parallel()

	cursor, err := ParseCursor("  ")
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if cursor != nil {
		t.Fatalf("cursor = %v, want nil", cursor)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"%%%", "bm90LWEtY3Vyc29y", "aGVsbG8"} {
		if _, err := ParseCursor(token); err == nil {
			t.Errorf("ParseCursor(%q) accepted garbage", token)
		}
	}
}
