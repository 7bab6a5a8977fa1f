package render

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestColorStoreLifecycle(t *testing.T) {
	s := NewColorStore()
	grey := colorful.Color{R: 0.3, G: 0.3, B: 0.3}
	blue := colorful.Color{R: 0.2, G: 0.2, B: 1}

	h := s.New(grey)
	if c, ok := s.Color(h); !ok || c != grey {
		t.Fatalf("new handle: got %v %v", c, ok)
	}

	s.SetColor(h, blue)
	if c, _ := s.Color(h); c != blue {
		t.Errorf("SetColor: got %v", c)
	}

	s.Release(h)
	s.SetColor(h, grey) // ignored
	if _, ok := s.Color(h); ok {
		t.Error("released handle still present")
	}
	if s.Len() != 0 {
		t.Errorf("len: got %d", s.Len())
	}
	if s.Hex(h) != "#000000" {
		t.Errorf("unknown handle hex: got %s", s.Hex(h))
	}
}

func TestHandlesAreUnique(t *testing.T) {
	s := NewColorStore()
	seen := map[Handle]bool{}
	for i := 0; i < 100; i++ {
		h := s.New(colorful.Color{})
		if seen[h] {
			t.Fatalf("handle %d reused", h)
		}
		seen[h] = true
	}
}

func TestFadeConverges(t *testing.T) {
	s := NewColorStore()
	idle := colorful.Color{R: 0.3, G: 0.3, B: 0.3}
	hit := colorful.Color{R: 0.2, G: 0.2, B: 1}
	h := s.New(hit)

	prev := 1.0
	for i := 0; i < 120; i++ {
		s.Fade(h, idle, 1.0/60)
		c, _ := s.Color(h)
		d := c.DistanceRgb(idle)
		if d > prev+1e-9 {
			t.Fatalf("frame %d: moved away from idle (%v > %v)", i, d, prev)
		}
		prev = d
	}
	if prev > 0.01 {
		t.Errorf("after 2s still %v from idle", prev)
	}

	// a large step lands exactly on the target
	s.SetColor(h, hit)
	s.Fade(h, idle, 10)
	if c, _ := s.Color(h); c.DistanceRgb(idle) > 1e-9 {
		t.Errorf("large step: got %v", c)
	}
}
