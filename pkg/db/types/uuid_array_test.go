package dbtypes

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDArrayScanLiteral(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	literal := "{" + first.String() + `,"` + second.String() + `"}`

	var arr UUIDArray
	if err := arr.Scan(literal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(arr) != 2 || arr[0] != first || arr[1] != second {
		t.Fatalf("expected [%s %s] got %v", first, second, arr)
	}
}

func TestUUIDArrayScanEmpty(t *testing.T) {
	var arr UUIDArray
	if err := arr.Scan("{}"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arr == nil || len(arr) != 0 {
		t.Fatalf("expected empty non-nil array, got %v", arr)
	}

	if err := arr.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arr == nil || len(arr) != 0 {
		t.Fatalf("expected empty non-nil array after nil scan, got %v", arr)
	}
}

func TestUUIDArrayScanRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		src  any
	}{
		{"not a uuid", "{not-a-uuid}"},
		{"truncated element", "{" + uuid.NewString()[:10] + "}"},
		{"trailing comma", "{" + uuid.NewString() + ",}"},
		{"unsupported type", 42},
	}

	for _, tt := range tests {
		var arr UUIDArray
		if err := arr.Scan(tt.src); err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
	}
}

func TestUUIDArrayValueRoundTrip(t *testing.T) {
	ids := UUIDArray{uuid.New(), uuid.New()}

	value, err := ids.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	literal, ok := value.(string)
	if !ok {
		t.Fatalf("expected string literal, got %T", value)
	}

	var decoded UUIDArray
	if err := decoded.Scan(literal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != len(ids) || decoded[0] != ids[0] || decoded[1] != ids[1] {
		t.Fatalf("round trip mismatch: %v vs %v", ids, decoded)
	}
}

func TestUUIDArrayToSet(t *testing.T) {
	id := uuid.New()
	set := UUIDArray{id, id}.ToSet()
	if len(set) != 1 {
		t.Fatalf("expected deduplicated set, got %d entries", len(set))
	}
	if _, ok := set[id]; !ok {
		t.Fatalf("expected %s in set", id)
	}

	empty := UUIDArray{}.ToSet()
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil set")
	}
}
