package checksum

import "testing"

func TestSum_Stable(t *testing.T) {
	a := Sum([]byte("---\ntitle: x\n---\n"))
	b := Sum([]byte("---\ntitle: x\n---\n"))
	if a != b {
		t.Errorf("same content gave %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}
	if a == Sum([]byte("---\ntitle: y\n---\n")) {
		t.Error("different content gave the same digest")
	}
}

func TestShort(t *testing.T) {
	sum := Sum(nil)
	if got := Short(sum); got != sum[:ShortLen] {
		t.Errorf("Short = %q", got)
	}
	if got := Short("abc"); got != "abc" {
		t.Errorf("Short(abc) = %q", got)
	}
}
