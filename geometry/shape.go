package geometry

import "fmt"

// Shape identifies the polygon the tombola is built from
type Shape int

const (
	Square Shape = iota
	Pentagon
	Hexagon
	Heptagon
	Octagon
)

var shapeNames = [...]string{"Square", "Pentagon", "Hexagon", "Heptagon", "Octagon"}

// Shapes returns every shape in display order
func Shapes() []Shape {
	return []Shape{Square, Pentagon, Hexagon, Heptagon, Octagon}
}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

// NumSides returns the side count; every shape has a fixed count
func (s Shape) NumSides() int {
	switch s {
	case Square:
		return 4
	case Pentagon:
		return 5
	case Hexagon:
		return 6
	case Heptagon:
		return 7
	case Octagon:
		return 8
	}
	return 0
}

// Next cycles to the following shape, wrapping at the end
func (s Shape) Next() Shape {
	return Shape((int(s) + 1) % len(shapeNames))
}

// Prev cycles to the preceding shape, wrapping at the start
func (s Shape) Prev() Shape {
	return Shape((int(s) + len(shapeNames) - 1) % len(shapeNames))
}

// SideTransforms lays the pads of this shape out around centre
func (s Shape) SideTransforms(centre Vec2, apothem float64) []Placement {
	return Polygon(centre, apothem, s.NumSides())
}

func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Shape) UnmarshalText(text []byte) error {
	for i, name := range shapeNames {
		if name == string(text) {
			*s = Shape(i)
			return nil
		}
	}
	return fmt.Errorf("unknown shape %q", string(text))
}
