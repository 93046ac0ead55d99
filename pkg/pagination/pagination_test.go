package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("zero limit should fall back to default, got %d", got)
	}
	if got := NormalizeLimit(500); got != MaxLimit {
		t.Fatalf("limit should be capped at %d, got %d", MaxLimit, got)
	}
	if got := NormalizeLimit(40); got != 40 {
		t.Fatalf("in-range limit should pass through, got %d", got)
	}
	if got := LimitWithBuffer(40); got != 41 {
		t.Fatalf("buffered limit should add one, got %d", got)
	}
}

func TestOffsetParamsNormalize(t *testing.T) {
	offset, limit := OffsetParams{Page: 3, Size: 10}.Normalize()
	if offset != 20 || limit != 10 {
		t.Fatalf("unexpected offset=%d limit=%d", offset, limit)
	}

	offset, limit = OffsetParams{}.Normalize()
	if offset != 0 || limit != DefaultLimit {
		t.Fatalf("defaults should apply, got offset=%d limit=%d", offset, limit)
	}

	offset, limit = OffsetParams{Page: -2, Size: 1000}.Normalize()
	if offset != 0 || limit != MaxLimit {
		t.Fatalf("clamping should apply, got offset=%d limit=%d", offset, limit)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}
	parsed, err := ParseCursor(EncodeCursor(original))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed == nil || !parsed.CreatedAt.Equal(original.CreatedAt) || parsed.ID != original.ID {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
}

func TestParseCursorErrors(t *testing.T) {
	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Fatalf("blank cursor should return nil, nil; got %v, %v", c, err)
	}
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ParseCursor("bm8tcGlwZQ=="); err == nil {
		t.Fatal("expected format error for payload without separator")
	}
}
