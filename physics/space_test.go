package physics

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"go-tombola/geometry"
)

type tag struct{ id int }

func newEntities(n int) []ecs.Entity {
	world := ecs.NewWorld()
	tags := ecs.NewMap[tag](world)
	entities := make([]ecs.Entity, n)
	for i := range entities {
		entities[i] = tags.NewEntity(&tag{id: i})
	}
	return entities
}

func hexagon(s *Space, pads []ecs.Entity) {
	length := geometry.SideLength(225, 6) + 2.5
	for i, p := range geometry.Polygon(geometry.Vec2{}, 225, 6) {
		a, b := p.Endpoints(length)
		s.AddPad(pads[i], a, b, 5)
	}
}

func TestBallFallsOntoBottomPad(t *testing.T) {
	entities := newEntities(7)
	pads, ball := entities[:6], entities[6]

	s := NewSpace()
	s.SetGravity(geometry.Vec2{X: 0, Y: -700})
	hexagon(s, pads)
	s.AddBall(ball, geometry.Vec2{}, 10)

	if s.NumPads() != 6 || s.NumBalls() != 1 {
		t.Fatalf("pads %d balls %d", s.NumPads(), s.NumBalls())
	}

	var hit *Collision
	for frame := 0; frame < 120 && hit == nil; frame++ {
		for _, c := range s.Step(1.0 / 60) {
			c := c
			hit = &c
			break
		}
	}
	if hit == nil {
		t.Fatal("no collision within 2s")
	}
	if hit.Ball != ball {
		t.Errorf("ball: got %v, want %v", hit.Ball, ball)
	}
	// side 3 is the bottom of the polygon
	if hit.Pad != pads[3] {
		t.Errorf("pad: got %v, want bottom pad %v", hit.Pad, pads[3])
	}

	pos, ok := s.Position(ball)
	if !ok || pos.Y > -150 {
		t.Errorf("ball position at impact: %v", pos)
	}
	v, ok := s.Velocity(ball)
	if !ok || v.Len() == 0 {
		t.Errorf("ball velocity at impact: %v", v)
	}
}

func TestContactReportedOnce(t *testing.T) {
	entities := newEntities(7)
	pads, ball := entities[:6], entities[6]

	s := NewSpace()
	s.SetGravity(geometry.Vec2{X: 0, Y: -700})
	s.SetRestitution(0) // land and rest on the bottom pad
	hexagon(s, pads)
	s.AddBall(ball, geometry.Vec2{}, 10)

	onsets := 0
	for frame := 0; frame < 240; frame++ {
		onsets += len(s.Step(1.0 / 60))
	}
	if onsets != 1 {
		t.Errorf("resting contact reported %d times, want 1", onsets)
	}
}

func TestSpinAndRebuild(t *testing.T) {
	entities := newEntities(6)
	s := NewSpace()
	hexagon(s, entities)

	s.SetSpin(-1.5)
	s.Step(1)
	if math.Abs(s.Angle()+1.5) > 1e-6 {
		t.Errorf("angle after 1s: got %v, want -1.5", s.Angle())
	}

	a, _, ok := s.PadEndpoints(entities[0])
	if !ok {
		t.Fatal("pad missing")
	}
	if math.Abs(a.Len()-math.Hypot(225, (geometry.SideLength(225, 6)+2.5)/2)) > 1e-6 {
		t.Errorf("rotated endpoint moved off its circle: %v", a)
	}

	s.RemoveTombola()
	if s.NumPads() != 0 || s.Angle() != 0 {
		t.Errorf("after rebuild: pads %d angle %v", s.NumPads(), s.Angle())
	}
	if _, _, ok := s.PadEndpoints(entities[0]); ok {
		t.Error("removed pad still has endpoints")
	}
}

func TestRemoveBall(t *testing.T) {
	entities := newEntities(2)
	s := NewSpace()
	s.AddBall(entities[0], geometry.Vec2{}, 10)

	s.RemoveBall(entities[1]) // unknown, ignored
	s.RemoveBall(entities[0])
	if s.NumBalls() != 0 {
		t.Errorf("balls: got %d", s.NumBalls())
	}
	if _, ok := s.Velocity(entities[0]); ok {
		t.Error("velocity for removed ball")
	}
	if got := s.Step(0); len(got) != 0 {
		t.Errorf("empty step: got %v", got)
	}
}
