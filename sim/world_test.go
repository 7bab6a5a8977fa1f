package sim

import (
	"testing"
	"time"

	"go-tombola/config"
	"go-tombola/geometry"
	"go-tombola/midi"
	"go-tombola/physics"
	"go-tombola/tombola"
)

const frame = time.Second / 60

type sent struct {
	on   bool
	key  uint8
	vel  uint8
	step int
}

type fakeTransport struct {
	step   int
	msgs   []sent
	panics int
}

func (f *fakeTransport) NoteOn(key, velocity uint8) {
	f.msgs = append(f.msgs, sent{on: true, key: key, vel: velocity, step: f.step})
}

func (f *fakeTransport) NoteOff(key uint8) {
	f.msgs = append(f.msgs, sent{key: key, step: f.step})
}

func (f *fakeTransport) Panic() { f.panics++ }

func still() *config.Settings {
	s := config.DefaultSettings()
	s.Spin = 0
	return &s
}

func TestFirstStepBuildsTombola(t *testing.T) {
	w := New(nil)
	s := still()
	w.Step(frame, s)

	if w.Shape() != geometry.Hexagon {
		t.Errorf("shape: got %v", w.Shape())
	}
	pads := w.Pads()
	if len(pads) != 6 {
		t.Fatalf("pads: got %d", len(pads))
	}
	for i, p := range pads {
		if p.Index != i || p.Note != s.Notes[i] {
			t.Errorf("pad %d: index %d note %s", i, p.Index, p.Note)
		}
	}
}

func TestShapeChangeRebuilds(t *testing.T) {
	w := New(nil)
	s := still()
	w.Step(frame, s)

	s.Shape = geometry.Square
	w.Step(frame, s)
	if len(w.Pads()) != 4 || len(s.Notes) != 4 {
		t.Errorf("square: %d pads, %d notes", len(w.Pads()), len(s.Notes))
	}
	if w.Colors().Len() != 4 {
		t.Errorf("materials: got %d, want 4", w.Colors().Len())
	}

	s.Shape = geometry.Octagon
	w.Step(frame, s)
	if len(w.Pads()) != 8 || len(s.Notes) != 8 || s.Notes[7] != config.DefaultNote {
		t.Errorf("octagon: %d pads, notes %v", len(w.Pads()), s.Notes)
	}
}

func TestLiveNoteEdit(t *testing.T) {
	w := New(nil)
	s := still()
	w.Step(frame, s)

	s.Notes[2] = midi.ASharp
	w.Step(frame, s)
	if got := w.Pads()[2].Note; got != midi.ASharp {
		t.Errorf("pad 2 note: got %s", got)
	}
}

func TestDroppedBallPlaysBottomPad(t *testing.T) {
	out := &fakeTransport{}
	w := New(out)
	s := still()
	w.Step(frame, s)

	w.SpawnBall(geometry.Vec2{}, tombola.Large)
	for i := 0; i < 180; i++ {
		out.step = i
		w.Step(frame, s)
	}

	if len(out.msgs) == 0 || !out.msgs[0].on {
		t.Fatalf("first message should be a note on: %+v", out.msgs)
	}
	// pad 3 is the bottom of the hexagon and plays F
	if want := midi.Encode(midi.F, 2); out.msgs[0].key != want {
		t.Errorf("first key: got %d, want %d", out.msgs[0].key, want)
	}
	if out.msgs[0].vel == 0 {
		t.Error("velocity of a falling ball should be above zero")
	}

	var off *sent
	for i := range out.msgs {
		if !out.msgs[i].on && out.msgs[i].key == out.msgs[0].key {
			off = &out.msgs[i]
			break
		}
	}
	if off == nil {
		t.Fatal("note never released")
	}
	if off.step == out.msgs[0].step {
		t.Error("note on and its note off flushed in the same frame")
	}

	balls := w.Balls()
	if len(balls) != 1 || balls[0].Bounces == 0 {
		t.Errorf("balls: %+v", balls)
	}
	if len(w.Recent()) == 0 {
		t.Error("recent events empty")
	}
}

func TestStaleCollisionSkipped(t *testing.T) {
	w := New(nil)
	s := still()
	w.Step(frame, s)
	pads := w.tombolas.Get(w.housing).Pads

	gone := w.SpawnBall(geometry.Vec2{}, tombola.Small)
	w.removeBall(gone)
	w.resolve(physics.Collision{Pad: pads[0], Ball: gone}, s)
	if w.queue.Len() != 0 {
		t.Errorf("despawned ball produced %v", w.queue.Events())
	}

	ball := w.SpawnBall(geometry.Vec2{}, tombola.Small)
	w.resolve(physics.Collision{Pad: ball, Ball: pads[1]}, s) // reversed
	if w.queue.Len() != 1 {
		t.Errorf("reversed pair: got %v", w.queue.Events())
	}

	// a rebuild despawns the old pads
	s.Shape = geometry.Pentagon
	w.Step(frame, s)
	w.queue.Drain()
	w.resolve(physics.Collision{Pad: pads[1], Ball: ball}, s)
	if w.queue.Len() != 0 {
		t.Errorf("old pad produced %v", w.queue.Events())
	}
}

func TestPopulationCapKeepsNewest(t *testing.T) {
	w := New(nil)
	s := still()
	s.MaxBalls = config.Limit{Enabled: true, Value: 2}
	w.Step(frame, s)

	sizes := []tombola.Size{tombola.Large, tombola.Large, tombola.Large, tombola.Small, tombola.Medium}
	for i, size := range sizes {
		w.SpawnBall(geometry.Vec2{X: float64(i*40 - 80)}, size)
	}
	w.Step(frame, s)

	balls := w.Balls()
	if len(balls) != 2 {
		t.Fatalf("balls: got %d, want 2", len(balls))
	}
	got := map[tombola.Size]int{}
	for _, b := range balls {
		got[b.Size]++
	}
	if got[tombola.Small] != 1 || got[tombola.Medium] != 1 {
		t.Errorf("survivors: %v, want the two newest", got)
	}
}

func TestOutOfBoundsRemoved(t *testing.T) {
	w := New(nil)
	s := still()
	w.Step(frame, s)

	w.SpawnBall(geometry.Vec2{X: 1000, Y: 1000}, tombola.Small)
	w.SpawnBall(geometry.Vec2{}, tombola.Small)
	w.Step(frame, s)

	if w.NumBalls() != 1 {
		t.Errorf("balls: got %d, want 1", w.NumBalls())
	}
}

func TestClearBalls(t *testing.T) {
	w := New(nil)
	s := still()
	w.Step(frame, s)
	for i := 0; i < 4; i++ {
		w.SpawnBall(geometry.Vec2{X: float64(i * 30)}, tombola.Medium)
	}
	w.ClearBalls()
	if w.NumBalls() != 0 || len(w.Balls()) != 0 {
		t.Errorf("after clear: %d balls", w.NumBalls())
	}
}

func TestSpawnTimesIncrease(t *testing.T) {
	w := New(nil)
	a := w.SpawnBall(geometry.Vec2{}, tombola.Small)
	b := w.SpawnBall(geometry.Vec2{X: 50}, tombola.Small)
	if w.balls.Get(b).SpawnTime <= w.balls.Get(a).SpawnTime {
		t.Error("spawn times must strictly increase within a frame")
	}
}

func TestPadFadesBackToIdle(t *testing.T) {
	w := New(nil)
	s := still()
	w.Step(frame, s)

	pads := w.tombolas.Get(w.housing).Pads
	pad := w.pads.Get(pads[0])
	w.colors.SetColor(pad.Material, tombola.PadHitColor)

	for i := 0; i < 120; i++ {
		w.Step(frame, s)
	}
	c, _ := w.colors.Color(pad.Material)
	if d := c.DistanceRgb(tombola.PadIdleColor); d > 0.01 {
		t.Errorf("still %v from idle after 2s", d)
	}
}
