package game

import (
	"strings"
	"testing"
	"time"
)

func TestNewRoomCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewRoomCode()
		if len(code) != 5 {
			t.Fatalf("code %q has length %d, want 5", code, len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(roomCodeAlphabet, c) {
				t.Fatalf("code %q contains %q, outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}
	if len(seen) < 90 {
		t.Fatalf("only %d distinct codes in 100 draws", len(seen))
	}
}

func TestNewSignullIDTimeOrdered(t *testing.T) {
	a := NewSignullID(t0)
	b := NewSignullID(t0.Add(time.Second))
	if !(a < b) {
		t.Fatalf("ids must sort by creation time: %q vs %q", a, b)
	}
}
