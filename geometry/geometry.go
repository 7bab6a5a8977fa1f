package geometry

import "math"

// Vec2 is a point or direction in world space (y up)
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Len returns the euclidean length
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the distance between two points
func (v Vec2) Dist(o Vec2) float64 {
	return v.Sub(o).Len()
}

// Rotate rotates v counter-clockwise by radians
func (v Vec2) Rotate(radians float64) Vec2 {
	sin, cos := math.Sincos(radians)
	return Vec2{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// Rect is an axis aligned rectangle, edges inclusive
type Rect struct {
	Min, Max Vec2
}

// CenteredRect returns a rect of the given size centred on the origin
func CenteredRect(width, height float64) Rect {
	return Rect{
		Min: Vec2{-width / 2, -height / 2},
		Max: Vec2{width / 2, height / 2},
	}
}

// Contains reports whether p lies inside r
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Placement is the transform of one pad: centre position and rotation
// (radians, counter-clockwise, 0 = long edge horizontal)
type Placement struct {
	Position Vec2
	Rotation float64
}

// Endpoints returns both ends of a segment of the given length laid along the placement
func (p Placement) Endpoints(length float64) (a, b Vec2) {
	half := Vec2{length / 2, 0}.Rotate(p.Rotation)
	return p.Position.Sub(half), p.Position.Add(half)
}

// Polygon lays out numSides pads evenly around centre. Side i sits at angle
// i*2π/n measured clockwise from +y, at distance apothem, with its long edge
// tangent to the inscribed circle. Fewer than 3 sides yields no placements.
func Polygon(centre Vec2, apothem float64, numSides int) []Placement {
	if numSides < 3 {
		return nil
	}

	increment := 2 * math.Pi / float64(numSides)
	placements := make([]Placement, 0, numSides)

	rotation := 0.0
	for i := 0; i < numSides; i++ {
		sin, cos := math.Sincos(float64(i) * increment)
		placements = append(placements, Placement{
			Position: Vec2{centre.X + apothem*sin, centre.Y + apothem*cos},
			Rotation: rotation,
		})
		rotation -= increment
	}

	return placements
}

// FixedHexagon is the fixed six-sided construction. The tombola is always
// built by Polygon; this is kept as an independent cross-check of it.
// Vertices are computed directly from sideLength using √3 so that adjacent
// pad centres are sideLength apart; each pad sits on an edge midpoint,
// rotations step by -60°.
func FixedHexagon(centre Vec2, sideLength float64) []Placement {
	a := sideLength           // distance from centre to each edge midpoint
	h := a / math.Sqrt(3)     // half the true edge length
	r := 2 * a / math.Sqrt(3) // circumradius

	// clockwise from the top-left corner
	vertices := [6]Vec2{
		{-h, a},
		{h, a},
		{r, 0},
		{h, -a},
		{-h, -a},
		{-r, 0},
	}

	placements := make([]Placement, 0, 6)
	rotation := 0.0
	for i := range vertices {
		v0 := vertices[i]
		v1 := vertices[(i+1)%len(vertices)]
		mid := v0.Add(v1).Scale(0.5)
		placements = append(placements, Placement{
			Position: centre.Add(mid),
			Rotation: rotation,
		})
		rotation -= math.Pi / 3
	}

	return placements
}

// SideLength returns the edge length of a regular polygon with the given apothem
func SideLength(apothem float64, numSides int) float64 {
	if numSides < 3 {
		return 0
	}
	return 2 * apothem * math.Tan(math.Pi/float64(numSides))
}
