package game

import (
	"fmt"
	"math/rand"
)

// EventKind names a simulation event.
type EventKind string

const (
	EventThrow    EventKind = "throw"
	EventCatch    EventKind = "catch"
	EventDiscStop EventKind = "disc_stop"
	EventArrive   EventKind = "arrive"
	EventMotion   EventKind = "motion"
	EventMove     EventKind = "move"
	EventPlace    EventKind = "place"
	EventSelect   EventKind = "select"
)

// Event is emitted for every discrete state change.
type Event struct {
	Tick     int
	Kind     EventKind
	PlayerID string
	X, Y     float64
	Detail   string
}

func (e Event) String() string {
	return fmt.Sprintf("[T=%04d] %-9s %-4s (%.1f,%.1f) %s", e.Tick, e.Kind, e.PlayerID, e.X, e.Y, e.Detail)
}

// Normalize repairs derived fields of a decoded snapshot: the field's total
// length, and the disc position of a held disc.
func (s *State) Normalize() {
	s.Field = s.Field.normalized()
	if t := s.Thrower(); t != nil && !s.Disc.InFlight {
		s.Disc.HolderID = t.ID
		s.Disc.X, s.Disc.Y = t.X, t.Y
	}
}

// Advance moves the state forward dt seconds: player kinematics when enabled,
// then disc flight and catch detection. Events carry tick 0; callers stamp it.
func (s *State) Advance(dt float64, kinematic bool) []Event {
	var events []Event
	if kinematic {
		for i := range s.Players {
			p := &s.Players[i]
			before := p.Motion
			if stepPlayer(p, s.Field, dt) {
				events = append(events, Event{Kind: EventArrive, PlayerID: p.ID, X: p.X, Y: p.Y})
			}
			if p.Motion != before {
				events = append(events, Event{Kind: EventMotion, PlayerID: p.ID, X: p.X, Y: p.Y,
					Detail: fmt.Sprintf("%s → %s", before, p.Motion)})
			}
		}
	}

	caught, stopped := s.stepDisc(dt)
	switch {
	case caught != "":
		events = append(events, Event{Kind: EventCatch, PlayerID: caught, X: s.Disc.X, Y: s.Disc.Y})
	case stopped:
		events = append(events, Event{Kind: EventDiscStop, X: s.Disc.X, Y: s.Disc.Y})
	}
	return events
}

// Simulation owns a live State and the per-instance settings around it:
// heat-map configuration, optimizer parameters, selection and the tick count.
// It is not safe for concurrent use; one goroutine drives it frame by frame.
type Simulation struct {
	State     *State
	HeatMap   HeatMapConfig
	Optimizer OptimizerParams
	// Kinematic enables acceleration-limited player movement toward targets.
	Kinematic bool
	// OnEvent, when set, receives every event as it happens.
	OnEvent func(Event)

	selectedID string
	tick       int
	version    uint64
}

// NewSimulation wraps a state with default settings.
func NewSimulation(st *State) *Simulation {
	if st == nil {
		st = NewState(DefaultField())
	}
	st.Normalize()
	return &Simulation{
		State:     st,
		HeatMap:   DefaultHeatMapConfig(),
		Optimizer: DefaultOptimizerParams(),
		Kinematic: true,
	}
}

// Tick is the number of updates run so far.
func (sim *Simulation) Tick() int { return sim.tick }

// Version increases whenever the state changes; heat maps computed for an
// older version are stale.
func (sim *Simulation) Version() uint64 { return sim.version }

func (sim *Simulation) touch() { sim.version++ }

func (sim *Simulation) emit(e Event) {
	e.Tick = sim.tick
	if sim.OnEvent != nil {
		sim.OnEvent(e)
	}
}

// Update advances one tick of dt seconds.
func (sim *Simulation) Update(dt float64) {
	sim.tick++
	moving := sim.State.Disc.InFlight
	if sim.Kinematic && !moving {
		for i := range sim.State.Players {
			p := &sim.State.Players[i]
			if p.Target != nil || p.CurrentSpeed > 0 {
				moving = true
				break
			}
		}
	}
	for _, e := range sim.State.Advance(dt, sim.Kinematic) {
		sim.emit(e)
	}
	if moving {
		sim.touch()
	}
}

// SetState replaces the live state, e.g. from a pasted snapshot.
func (sim *Simulation) SetState(st *State) error {
	if err := st.Validate(); err != nil {
		return err
	}
	st.Normalize()
	sim.State = st
	sim.selectedID = ""
	sim.touch()
	return nil
}

// SetModes replaces the enabled heat-map layers.
func (sim *Simulation) SetModes(m Modes) {
	sim.HeatMap.Modes = m
	sim.touch()
}

// SetNormalize toggles min-max normalization of the heat map.
func (sim *Simulation) SetNormalize(on bool) {
	sim.HeatMap.Normalize = on
	sim.touch()
}

// CalculateHeatMap evaluates the configured layers against the live state.
func (sim *Simulation) CalculateHeatMap() *HeatMapData {
	return CalculateHeatMap(sim.State, sim.HeatMap)
}

// PlayerAt returns the topmost player within ClickHitRadius of a point,
// scanning last-drawn first.
func (sim *Simulation) PlayerAt(x, y float64) *Player {
	players := sim.State.Players
	for i := len(players) - 1; i >= 0; i-- {
		if players[i].DistanceTo(x, y) <= ClickHitRadius {
			return &players[i]
		}
	}
	return nil
}

// SelectPlayer marks a player as selected; an empty id clears the selection.
func (sim *Simulation) SelectPlayer(id string) error {
	if id != "" && sim.State.Player(id) == nil {
		return unknownPlayer(id)
	}
	sim.selectedID = id
	if p := sim.State.Player(id); p != nil {
		sim.emit(Event{Kind: EventSelect, PlayerID: id, X: p.X, Y: p.Y})
	}
	return nil
}

// Selected returns the selected player, or nil.
func (sim *Simulation) Selected() *Player {
	return sim.State.Player(sim.selectedID)
}

// MovePlayerTo places a player instantly, clamped into the field.
func (sim *Simulation) MovePlayerTo(id string, x, y float64) error {
	if err := sim.State.MovePlayer(id, x, y); err != nil {
		return err
	}
	p := sim.State.Player(id)
	sim.emit(Event{Kind: EventMove, PlayerID: id, X: p.X, Y: p.Y})
	sim.touch()
	return nil
}

// SetPlayerTarget gives a player a movement goal for the kinematic model.
func (sim *Simulation) SetPlayerTarget(id string, x, y float64) error {
	if err := sim.State.SetTarget(id, x, y); err != nil {
		return err
	}
	sim.touch()
	return nil
}

// ThrowDisc throws from the current holder; false when nobody holds the disc.
func (sim *Simulation) ThrowDisc(targetX, targetY, speed float64) bool {
	thrower := sim.State.Disc.HolderID
	if !sim.State.ThrowDisc(targetX, targetY, speed) {
		return false
	}
	sim.emit(Event{Kind: EventThrow, PlayerID: thrower, X: targetX, Y: targetY,
		Detail: fmt.Sprintf("speed=%.1f", speed)})
	sim.touch()
	return true
}

// CatchDisc gives the disc to a player.
func (sim *Simulation) CatchDisc(id string) error {
	if err := sim.State.CatchDisc(id); err != nil {
		return err
	}
	sim.emit(Event{Kind: EventCatch, PlayerID: id, X: sim.State.Disc.X, Y: sim.State.Disc.Y})
	sim.touch()
	return nil
}

// PositionDefender runs the defender search for a label ("" = first pair).
func (sim *Simulation) PositionDefender(label string) (Point, bool) {
	d := sim.State.DownfieldDefender(label)
	pt, ok := PositionDefenderOptimal(sim.State, label, sim.Optimizer, sim.HeatMap.Params)
	if ok {
		sim.place(d.ID, pt, "defender")
	}
	return pt, ok
}

// PositionOffender runs the offender search for a label ("" = first offender).
func (sim *Simulation) PositionOffender(label string) (Point, bool) {
	o := sim.State.Offender(label)
	pt, ok := PositionOffenderOptimal(sim.State, label, sim.Optimizer, sim.HeatMap.Params)
	if ok {
		sim.place(o.ID, pt, "offender")
	}
	return pt, ok
}

// PositionStack sends the first offender to the stack.
func (sim *Simulation) PositionStack() (Point, bool) {
	o := sim.State.Offender("")
	pt, ok := PositionOffenderStack(sim.State, "", sim.Optimizer)
	if ok {
		sim.place(o.ID, pt, "stack")
	}
	return pt, ok
}

// SampleOffender moves the offender to a heat-weighted random cell.
func (sim *Simulation) SampleOffender(label string, rng *rand.Rand) (Point, bool) {
	o := sim.State.Offender(label)
	pt, ok := SampleOffenderPosition(sim.State, label, sim.Optimizer, sim.HeatMap.Params, rng)
	if ok {
		sim.place(o.ID, pt, "sampled")
	}
	return pt, ok
}

func (sim *Simulation) place(id string, pt Point, why string) {
	// The id came from a lookup on the same state.
	_ = sim.State.MovePlayer(id, pt.X, pt.Y)
	sim.emit(Event{Kind: EventPlace, PlayerID: id, X: pt.X, Y: pt.Y, Detail: why})
	sim.touch()
}
