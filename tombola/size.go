package tombola

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"go-tombola/midi"
)

// Size is a ball size. Smaller balls play higher.
type Size int

const (
	Small Size = iota
	Medium
	Large
)

var sizeNames = [...]string{"Small", "Medium", "Large"}

// Sizes returns every size, smallest first
func Sizes() []Size {
	return []Size{Small, Medium, Large}
}

func (s Size) String() string {
	if s < 0 || int(s) >= len(sizeNames) {
		return fmt.Sprintf("Size(%d)", int(s))
	}
	return sizeNames[s]
}

// Octave is the octave every note played by a ball of this size sounds in
func (s Size) Octave() int {
	switch s {
	case Small:
		return 4
	case Medium:
		return 3
	default:
		return 2
	}
}

func (s Size) Radius() float64 {
	switch s {
	case Small:
		return 10
	case Medium:
		return 15
	default:
		return 25
	}
}

// Color returns the display colour for the size
func (s Size) Color() colorful.Color {
	switch s {
	case Small:
		return colorful.LinearRgb(1.8, 0.3, 0.3).Clamped()
	case Medium:
		return colorful.LinearRgb(1.5, 1.3, 0.3).Clamped()
	default:
		return colorful.LinearRgb(0.2, 0.2, 2.3).Clamped()
	}
}

// Increment returns the next bigger size, saturating at Large
func (s Size) Increment() Size {
	if s >= Large {
		return Large
	}
	return s + 1
}

// Decrement returns the next smaller size, saturating at Small
func (s Size) Decrement() Size {
	if s <= Small {
		return Small
	}
	return s - 1
}

// SizeForKey picks a ball size from the register of a played key
func SizeForKey(key uint8) Size {
	switch {
	case key < midi.C3:
		return Large
	case key < midi.C3+midi.NotesPerOctave:
		return Medium
	default:
		return Small
	}
}

func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(text []byte) error {
	for i, name := range sizeNames {
		if name == string(text) {
			*s = Size(i)
			return nil
		}
	}
	return fmt.Errorf("unknown ball size %q", string(text))
}
