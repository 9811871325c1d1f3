package utils

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("short string changed: %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello" {
		t.Errorf("expected hard cut, got %q", got)
	}
	if got := Truncate("hello", 0); got != "hello" {
		t.Errorf("maxLen 0 should be no-op, got %q", got)
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	// "héllo": é is 2 bytes, so a 2-byte cut lands mid-rune and must back up.
	if got := Truncate("héllo", 2); got != "h" {
		t.Errorf("cut inside rune: got %q, want %q", got, "h")
	}
	if got := Truncate("héllo", 3); got != "hé" {
		t.Errorf("cut at rune end: got %q, want %q", got, "hé")
	}
	if got := Truncate("日本語", 4); got != "日" {
		t.Errorf("cut inside 3-byte rune: got %q, want %q", got, "日")
	}
	if !utf8.ValidString(Truncate("résumé and more text", 7)) {
		t.Error("truncated string is not valid UTF-8")
	}
}

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if n := InnerProduct(v, v); n < 0.999 || n > 1.001 {
		t.Errorf("norm after normalize = %f", n)
	}

	zero := []float32{0, 0}
	NormalizeL2(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector should be unchanged: %v", zero)
	}
}

func TestInnerProduct(t *testing.T) {
	if got := InnerProduct([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: %f", got)
	}
	if got := InnerProduct([]float32{1, 2}, []float32{1}); got != 0 {
		t.Errorf("length mismatch should be 0, got %f", got)
	}
}
