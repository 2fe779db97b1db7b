package idgen

import (
	"strings"
	"testing"
)

func TestNewShapeAndPrefix(t *testing.T) {
	id := New("ds-")
	if !strings.HasPrefix(id, "ds-") {
		t.Fatalf("expected prefix, got %q", id)
	}
	if len(id) != len("ds-")+Length {
		t.Fatalf("unexpected length: %q", id)
	}
	for _, r := range id[len("ds-"):] {
		if !strings.ContainsRune(Alphabet, r) {
			t.Fatalf("character %q outside alphabet in %q", r, id)
		}
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 1000 {
		id := New("x-")
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
