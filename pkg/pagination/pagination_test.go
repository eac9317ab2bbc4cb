package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultLimit},
		{in: -5, want: DefaultLimit},
		{in: 10, want: 10},
		{in: MaxLimit, want: MaxLimit},
		{in: MaxLimit + 1, want: MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d, want 11", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC),
		ID:        uuid.New(),
	}
	parsed, err := Parse(Encode(cursor))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed == nil {
		t.Fatalf("expected cursor, got nil")
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) {
		t.Fatalf("expected %v, got %v", cursor.CreatedAt, parsed.CreatedAt)
	}
	if parsed.ID != cursor.ID {
		t.Fatalf("expected %s, got %s", cursor.ID, parsed.ID)
	}
}

func TestParseEmptyMeansFirstPage(t *testing.T) {
	parsed, err := Parse("  ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != nil {
		t.Fatalf("expected nil cursor for empty token")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-base64!"); err == nil {
		t.Fatalf("expected error for invalid base64")
	}
	if _, err := Parse("aGVsbG8="); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
