package sim

import (
	"time"

	"github.com/mlange-42/ark/ecs"

	"go-tombola/config"
	"go-tombola/debug"
	"go-tombola/geometry"
	"go-tombola/midi"
	"go-tombola/physics"
	"go-tombola/render"
	"go-tombola/tombola"
)

// DefaultBounds is the playfield; balls leaving it are removed
var DefaultBounds = geometry.CenteredRect(800, 600)

// recentLimit is how many flushed events Recent keeps
const recentLimit = 8

// Tombola is the component of the housing entity. It owns its pads.
type Tombola struct {
	Shape geometry.Shape
	Pads  []ecs.Entity
}

// World is the running simulation: ECS storage for the tombola, pads and
// balls, the physics space and the colour store, stepped once per frame
type World struct {
	world *ecs.World

	tombolas *ecs.Map[Tombola]
	pads     *ecs.Map[tombola.Pad]
	balls    *ecs.Map[tombola.Ball]

	padFilter  *ecs.Filter1[tombola.Pad]
	ballFilter *ecs.Filter1[tombola.Ball]

	space     *physics.Space
	colors    *render.ColorStore
	queue     midi.Queue
	resolver  tombola.Resolver
	transport midi.Transport

	housing   ecs.Entity
	built     bool
	centre    geometry.Vec2
	bounds    geometry.Rect
	clock     time.Duration
	lastSpawn time.Duration
	recent    []midi.Event
}

// New creates an empty world sending notes to transport (nil drops them)
func New(transport midi.Transport) *World {
	w := &World{
		world:     ecs.NewWorld(),
		space:     physics.NewSpace(),
		colors:    render.NewColorStore(),
		transport: transport,
		bounds:    DefaultBounds,
	}
	w.tombolas = ecs.NewMap[Tombola](w.world)
	w.pads = ecs.NewMap[tombola.Pad](w.world)
	w.balls = ecs.NewMap[tombola.Ball](w.world)
	w.padFilter = ecs.NewFilter1[tombola.Pad](w.world)
	w.ballFilter = ecs.NewFilter1[tombola.Ball](w.world)
	w.resolver = tombola.Resolver{Queue: &w.queue, Renderer: w.colors}
	return w
}

// SetTransport replaces the MIDI destination
func (w *World) SetTransport(t midi.Transport) {
	w.transport = t
}

// Step runs one frame: apply settings (rebuilding the tombola when the shape
// changed), step physics, resolve new contacts, sweep note timers, evict
// balls, fade pads and flush MIDI
func (w *World) Step(dt time.Duration, s *config.Settings) {
	w.clock += dt

	if !w.built || w.Shape() != s.Shape {
		w.rebuild(s)
	}
	w.applySettings(s)

	for _, c := range w.space.Step(dt.Seconds()) {
		w.resolve(c, s)
	}

	w.sweep(dt)
	w.evict(s)
	w.fade(dt.Seconds())
	w.flush()
}

func (w *World) applySettings(s *config.Settings) {
	w.space.SetSpin(tombola.AngularVelocity(s))
	w.space.SetGravity(tombola.Gravity(s))
	w.space.SetRestitution(s.Bounciness)

	query := w.padFilter.Query()
	for query.Next() {
		pad := query.Get()
		pad.Note = s.NoteFor(pad.Index)
	}
}

// rebuild replaces the tombola with one of the configured shape. Notes still
// sounding on the old pads are dropped without a note off.
func (w *World) rebuild(s *config.Settings) {
	if w.built && w.world.Alive(w.housing) {
		housing := w.tombolas.Get(w.housing)
		for _, e := range housing.Pads {
			if w.pads.Has(e) {
				w.colors.Release(w.pads.Get(e).Material)
			}
			w.world.RemoveEntity(e)
		}
		w.world.RemoveEntity(w.housing)
	}
	w.space.RemoveTombola()

	layout := tombola.PrepareRebuild(s, w.centre)
	padEntities := make([]ecs.Entity, 0, len(layout))
	for _, l := range layout {
		material := w.colors.New(tombola.PadIdleColor)
		e := w.pads.NewEntity(tombola.NewPad(l.Index, s.NoteFor(l.Index), material))
		a, b := l.Endpoints()
		w.space.AddPad(e, a, b, tombola.Thickness)
		padEntities = append(padEntities, e)
	}

	w.housing = w.tombolas.NewEntity(&Tombola{Shape: s.Shape, Pads: padEntities})
	w.built = true
	debug.Log("tombola", "built %s with %d pads", s.Shape, len(padEntities))
}

// resolve handles one contact; contacts naming despawned entities are skipped
func (w *World) resolve(c physics.Collision, s *config.Settings) {
	padE, ballE := c.Pad, c.Ball
	if !w.world.Alive(padE) || !w.world.Alive(ballE) {
		return
	}
	if !w.pads.Has(padE) && w.pads.Has(ballE) {
		padE, ballE = ballE, padE
	}
	if !w.pads.Has(padE) || !w.balls.Has(ballE) {
		return
	}

	v, ok := w.space.Velocity(ballE)
	if !ok {
		return
	}
	w.resolver.Collide(w.pads.Get(padE), w.balls.Get(ballE), v.Len(), s)
}

func (w *World) sweep(dt time.Duration) {
	query := w.padFilter.Query()
	for query.Next() {
		tombola.Sweep(query.Get(), dt, &w.queue)
	}
}

func (w *World) evict(s *config.Settings) {
	var candidates []tombola.Candidate[ecs.Entity]

	query := w.ballFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos, _ := w.space.Position(e)
		candidates = append(candidates, tombola.Candidate[ecs.Entity]{
			Key:      e,
			Ball:     *query.Get(),
			Position: pos,
		})
	}

	removed := tombola.Evict(candidates, w.bounds, s)
	for _, e := range removed {
		w.removeBall(e)
	}
	if len(removed) > 0 {
		debug.Log("balls", "evicted %d, %d left", len(removed), len(candidates)-len(removed))
	}
}

func (w *World) fade(dt float64) {
	query := w.padFilter.Query()
	for query.Next() {
		w.colors.Fade(query.Get().Material, tombola.PadIdleColor, dt)
	}
}

func (w *World) flush() {
	events := w.queue.Drain()
	for _, e := range events {
		if w.transport != nil {
			midi.Send(w.transport, e)
		}
	}
	w.recent = append(w.recent, events...)
	if n := len(w.recent); n > recentLimit {
		w.recent = append([]midi.Event(nil), w.recent[n-recentLimit:]...)
	}
}

// SpawnBall drops a ball of size at pos. Spawn times are strictly
// increasing so eviction order is always defined.
func (w *World) SpawnBall(pos geometry.Vec2, size tombola.Size) ecs.Entity {
	spawn := w.clock
	if spawn <= w.lastSpawn {
		spawn = w.lastSpawn + 1
	}
	w.lastSpawn = spawn

	e := w.balls.NewEntity(&tombola.Ball{Size: size, SpawnTime: spawn})
	w.space.AddBall(e, pos, size.Radius())
	return e
}

// ClearBalls removes every ball
func (w *World) ClearBalls() {
	var all []ecs.Entity
	query := w.ballFilter.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}
	for _, e := range all {
		w.removeBall(e)
	}
}

func (w *World) removeBall(e ecs.Entity) {
	w.space.RemoveBall(e)
	if w.world.Alive(e) {
		w.world.RemoveEntity(e)
	}
}

// Shape returns the shape the tombola is currently built as
func (w *World) Shape() geometry.Shape {
	if !w.built {
		return -1
	}
	return w.tombolas.Get(w.housing).Shape
}

func (w *World) Bounds() geometry.Rect {
	return w.bounds
}

func (w *World) SetBounds(r geometry.Rect) {
	w.bounds = r
}

// Clock returns the simulated time so far
func (w *World) Clock() time.Duration {
	return w.clock
}

// Colors exposes pad materials for drawing
func (w *World) Colors() *render.ColorStore {
	return w.colors
}

// Recent returns the last few events sent, oldest first
func (w *World) Recent() []midi.Event {
	return w.recent
}
