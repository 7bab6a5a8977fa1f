package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/mlange-42/ark/ecs"

	"go-tombola/geometry"
)

// Collision types
const (
	CollisionPad  cp.CollisionType = 1
	CollisionBall cp.CollisionType = 2
)

// MaxSubstep is the longest single integration step; larger frames are split
const MaxSubstep = 1.0 / 120

// BallDensity gives balls a mass proportional to their area
const BallDensity = 0.01

// Collision is a pad/ball contact that started during the last Step
type Collision struct {
	Pad  ecs.Entity
	Ball ecs.Entity
}

// Space wraps a chipmunk space holding one kinematic tombola body with a
// segment per pad, and one dynamic body per ball
type Space struct {
	space   *cp.Space
	tombola *cp.Body

	pads  map[ecs.Entity]*padShape
	balls map[ecs.Entity]*cp.Shape

	restitution float64
	pending     []Collision
}

type padShape struct {
	shape *cp.Shape
	a, b  cp.Vector // body-local endpoints
}

func NewSpace() *Space {
	s := &Space{
		space:       cp.NewSpace(),
		pads:        make(map[ecs.Entity]*padShape),
		balls:       make(map[ecs.Entity]*cp.Shape),
		restitution: 1,
	}
	s.tombola = s.space.AddBody(cp.NewKinematicBody())

	handler := s.space.NewCollisionHandler(CollisionPad, CollisionBall)
	handler.BeginFunc = s.begin

	return s
}

// begin fires once when a pad and a ball start touching
func (s *Space) begin(arb *cp.Arbiter, space *cp.Space, _ interface{}) bool {
	a, b := arb.Shapes()
	pad, okPad := a.UserData.(ecs.Entity)
	ball, okBall := b.UserData.(ecs.Entity)
	if okPad && okBall {
		s.pending = append(s.pending, Collision{Pad: pad, Ball: ball})
	}
	return true
}

// Step advances the simulation by dt seconds and returns the contacts that
// started, in the order the solver reported them
func (s *Space) Step(dt float64) []Collision {
	if dt > 0 {
		n := int(math.Ceil(dt / MaxSubstep))
		sub := dt / float64(n)
		for i := 0; i < n; i++ {
			s.space.Step(sub)
		}
	}

	collisions := s.pending
	s.pending = nil
	return collisions
}

// SetGravity sets the world gravity
func (s *Space) SetGravity(g geometry.Vec2) {
	s.space.SetGravity(cp.Vector{X: g.X, Y: g.Y})
}

// SetSpin sets the tombola's angular velocity in radians per second
func (s *Space) SetSpin(angularVelocity float64) {
	s.tombola.SetAngularVelocity(angularVelocity)
}

// SetRestitution applies bounciness to every ball. Pads stay perfectly
// elastic so the contact restitution equals the setting.
func (s *Space) SetRestitution(e float64) {
	if e == s.restitution {
		return
	}
	s.restitution = e
	for _, shape := range s.balls {
		shape.SetElasticity(e)
	}
}

// AddPad attaches a pad segment to the tombola. Endpoints are in tombola
// space, with the tombola at rest.
func (s *Space) AddPad(e ecs.Entity, a, b geometry.Vec2, thickness float64) {
	va, vb := cp.Vector{X: a.X, Y: a.Y}, cp.Vector{X: b.X, Y: b.Y}
	shape := cp.NewSegment(s.tombola, va, vb, thickness/2)
	shape.SetElasticity(1)
	shape.SetFriction(0.3)
	shape.SetCollisionType(CollisionPad)
	shape.UserData = e

	s.space.AddShape(shape)
	s.pads[e] = &padShape{shape: shape, a: va, b: vb}
}

// RemoveTombola drops every pad and puts the tombola back at rest
func (s *Space) RemoveTombola() {
	for e, p := range s.pads {
		s.space.RemoveShape(p.shape)
		delete(s.pads, e)
	}
	s.tombola.SetAngle(0)
}

// Angle returns the tombola rotation in radians
func (s *Space) Angle() float64 {
	return s.tombola.Angle()
}

// PadEndpoints returns the world-space ends of a pad
func (s *Space) PadEndpoints(e ecs.Entity) (a, b geometry.Vec2, ok bool) {
	p, ok := s.pads[e]
	if !ok {
		return a, b, false
	}
	wa := s.tombola.LocalToWorld(p.a)
	wb := s.tombola.LocalToWorld(p.b)
	return geometry.Vec2{X: wa.X, Y: wa.Y}, geometry.Vec2{X: wb.X, Y: wb.Y}, true
}

// AddBall drops a ball at pos with no initial velocity
func (s *Space) AddBall(e ecs.Entity, pos geometry.Vec2, radius float64) {
	mass := BallDensity * math.Pi * radius * radius
	body := s.space.AddBody(cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{})))
	body.SetPosition(cp.Vector{X: pos.X, Y: pos.Y})

	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetElasticity(s.restitution)
	shape.SetFriction(0.3)
	shape.SetCollisionType(CollisionBall)
	shape.UserData = e

	s.space.AddShape(shape)
	s.balls[e] = shape
}

// RemoveBall removes a ball; unknown entities are ignored
func (s *Space) RemoveBall(e ecs.Entity) {
	shape, ok := s.balls[e]
	if !ok {
		return
	}
	body := shape.Body()
	s.space.RemoveShape(shape)
	s.space.RemoveBody(body)
	delete(s.balls, e)
}

// Velocity returns the linear velocity of a ball
func (s *Space) Velocity(e ecs.Entity) (geometry.Vec2, bool) {
	shape, ok := s.balls[e]
	if !ok {
		return geometry.Vec2{}, false
	}
	v := shape.Body().Velocity()
	return geometry.Vec2{X: v.X, Y: v.Y}, true
}

// Position returns the centre of a ball
func (s *Space) Position(e ecs.Entity) (geometry.Vec2, bool) {
	shape, ok := s.balls[e]
	if !ok {
		return geometry.Vec2{}, false
	}
	p := shape.Body().Position()
	return geometry.Vec2{X: p.X, Y: p.Y}, true
}

// NumBalls returns the number of balls in the space
func (s *Space) NumBalls() int {
	return len(s.balls)
}

// NumPads returns the number of pad segments on the tombola
func (s *Space) NumPads() int {
	return len(s.pads)
}
