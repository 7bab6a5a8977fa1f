package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// FadeSpeed is the fraction of the remaining distance to the target colour
// covered per second
const FadeSpeed = 5.0

// Handle identifies one material colour
type Handle uint32

// ColorStore owns every material colour in the scene. Front-ends read it
// when drawing; the simulation only asks for changes.
type ColorStore struct {
	colors map[Handle]colorful.Color
	next   Handle
}

func NewColorStore() *ColorStore {
	return &ColorStore{colors: make(map[Handle]colorful.Color)}
}

// New allocates a handle starting at c
func (s *ColorStore) New(c colorful.Color) Handle {
	s.next++
	s.colors[s.next] = c
	return s.next
}

// SetColor replaces the colour of h. Released handles are ignored.
func (s *ColorStore) SetColor(h Handle, c colorful.Color) {
	if _, ok := s.colors[h]; ok {
		s.colors[h] = c
	}
}

func (s *ColorStore) Color(h Handle) (colorful.Color, bool) {
	c, ok := s.colors[h]
	return c, ok
}

// Hex returns the displayable colour of h, black if unknown
func (s *ColorStore) Hex(h Handle) string {
	c, ok := s.colors[h]
	if !ok {
		return "#000000"
	}
	return c.Clamped().Hex()
}

func (s *ColorStore) Release(h Handle) {
	delete(s.colors, h)
}

// Len returns the number of live handles
func (s *ColorStore) Len() int {
	return len(s.colors)
}

// Fade moves h toward target by FadeSpeed*dt of the remaining distance
func (s *ColorStore) Fade(h Handle, target colorful.Color, dt float64) {
	c, ok := s.colors[h]
	if !ok {
		return
	}
	t := math.Min(math.Max(FadeSpeed*dt, 0), 1)
	s.colors[h] = c.BlendRgb(target, t)
}
