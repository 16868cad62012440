package utils

import (
	"strings"
	"testing"
)

func TestNewBookingReferenceFormat(t *testing.T) {
	ref := NewBookingReference("SAH")
	if len(ref) != 13 {
		t.Fatalf("len(%q) = %d, want 13", ref, len(ref))
	}
	if !strings.HasPrefix(ref, "SAH") {
		t.Errorf("reference %q missing prefix", ref)
	}
	for _, r := range ref[3:] {
		if !strings.ContainsRune("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ", r) {
			t.Errorf("reference %q contains unexpected rune %q", ref, r)
		}
	}
}

func TestNewBookingReferenceBadPrefixFallsBack(t *testing.T) {
	for _, prefix := range []string{"", "SAHARAM", "s"} {
		if ref := NewBookingReference(prefix); !strings.HasPrefix(ref, "SAH") {
			t.Errorf("prefix %q: reference %q did not fall back to SAH", prefix, ref)
		}
	}
}

func TestNewBookingReferenceLowercasePrefix(t *testing.T) {
	if ref := NewBookingReference("abc"); !strings.HasPrefix(ref, "ABC") {
		t.Errorf("reference %q, want ABC prefix", ref)
	}
}

func TestNewBookingReferenceCollisionsAreRare(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	dups := 0
	for i := 0; i < 1000; i++ {
		ref := NewBookingReference("SAH")
		if _, ok := seen[ref]; ok {
			dups++
		}
		seen[ref] = struct{}{}
	}
	// 4 base-36 chars within one second gives ~1.7M combinations; a
	// couple of collisions in a burst is fine, the UNIQUE key handles
	// them, but wholesale repetition means the generator is broken.
	if dups > 10 {
		t.Errorf("%d duplicate references in 1000 draws", dups)
	}
}
