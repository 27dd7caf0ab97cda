package game

import (
	"fmt"
	"math/rand"
)

// DefaultTickDT is one 60 Hz frame.
const DefaultTickDT = 1.0 / 60

// TestSim is a headless simulation harness used by tests and the batch
// report. It drives a Simulation with a fixed dt, deterministic seeding and
// structured logging, and has no rendering dependency.
type TestSim struct {
	Field  Field
	Sim    *Simulation
	SimLog *SimLog
	DT     float64
	rng    *rand.Rand

	players   []Player
	kinematic bool
	modes     Modes
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra      simOptionKind = iota // field, seed, dt, verbose: applied first
	simOptPlayer                          // add players: applied once the field exists
	simOptPossession                      // disc holder, mark, targets: applied after players exist
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithField sets the field dimensions.
func WithField(length, width, endZoneDepth float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Field = NewField(length, width, endZoneDepth)
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithDT sets the fixed tick length in seconds.
func WithDT(dt float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.DT = dt
	}}
}

// WithKinematics switches the player motion model on or off.
func WithKinematics(on bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.kinematic = on
	}}
}

// WithModes enables heat-map layers.
func WithModes(m Modes) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.modes = m
	}}
}

// WithOffender adds an offense player at (x,y).
func WithOffender(id string, x, y float64) SimOption {
	return WithLabelledPlayer(id, "", TeamOffense, x, y)
}

// WithDefender adds a defense player at (x,y).
func WithDefender(id string, x, y float64) SimOption {
	return WithLabelledPlayer(id, "", TeamDefense, x, y)
}

// WithLabelledPlayer adds a player carrying a pairing label.
func WithLabelledPlayer(id, label string, team Team, x, y float64) SimOption {
	return SimOption{simOptPlayer, func(ts *TestSim) {
		p := NewPlayer(id, team, x, y)
		p.Label = label
		ts.players = append(ts.players, p)
	}}
}

// WithHolder gives the disc to a player; the nearest opposing defender
// becomes the mark.
func WithHolder(id string) SimOption {
	return SimOption{simOptPossession, func(ts *TestSim) {
		if err := ts.Sim.State.CatchDisc(id); err != nil {
			panic(fmt.Sprintf("WithHolder: %v", err))
		}
	}}
}

// WithMark forces a specific defender to be the mark.
func WithMark(id string) SimOption {
	return SimOption{simOptPossession, func(ts *TestSim) {
		st := ts.Sim.State
		if st.Player(id) == nil {
			panic(fmt.Sprintf("WithMark: %v", unknownPlayer(id)))
		}
		for i := range st.Players {
			st.Players[i].IsMark = st.Players[i].ID == id
		}
	}}
}

// WithTarget gives a player a movement goal.
func WithTarget(id string, x, y float64) SimOption {
	return SimOption{simOptPossession, func(ts *TestSim) {
		if err := ts.Sim.SetPlayerTarget(id, x, y); err != nil {
			panic(fmt.Sprintf("WithTarget: %v", err))
		}
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (field, seed, dt, verbose)
//  2. Players
//  3. Build the Simulation
//  4. Possession, marks and targets
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		Field:     DefaultField(),
		SimLog:    NewSimLog(false),
		DT:        DefaultTickDT,
		rng:       rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
		kinematic: true,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptPlayer {
			o.fn(ts)
		}
	}

	st := NewState(ts.Field)
	for _, p := range ts.players {
		st.AddPlayer(p)
	}
	// Until someone holds it the disc rests at midfield.
	st.Disc.X, st.Disc.Y = st.Field.TotalLength/2, st.Field.CenterY()
	ts.Sim = NewSimulation(st)
	ts.Sim.Kinematic = ts.kinematic
	ts.Sim.HeatMap.Modes = ts.modes
	ts.Sim.OnEvent = ts.record

	for _, o := range opts {
		if o.kind == simOptPossession {
			o.fn(ts)
		}
	}
	return ts
}

// State is the live state.
func (ts *TestSim) State() *State { return ts.Sim.State }

// Rand is the harness RNG.
func (ts *TestSim) Rand() *rand.Rand { return ts.rng }

func (ts *TestSim) record(e Event) {
	team := "--"
	if p := ts.Sim.State.Player(e.PlayerID); p != nil {
		team = p.Team.String()
	}
	ts.SimLog.AddEvent(e, team)
}

// Throw throws from the current holder, logging the throw.
func (ts *TestSim) Throw(targetX, targetY, speed float64) bool {
	return ts.Sim.ThrowDisc(targetX, targetY, speed)
}

// RunTicks advances the simulation n ticks, logging events to SimLog.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.runOneTick()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.Sim.Tick()
		}
	}
	return -1
}

func (ts *TestSim) runOneTick() {
	ts.Sim.Update(ts.DT)
	if !ts.SimLog.Verbose() {
		return
	}
	tick := ts.Sim.Tick()
	st := ts.Sim.State
	for i := range st.Players {
		p := &st.Players[i]
		ts.SimLog.AddVerbose(tick, p.ID, p.Team.String(), "move", "position",
			fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y), 0)
		ts.SimLog.AddVerbose(tick, p.ID, p.Team.String(), "move", "speed",
			fmt.Sprintf("%.2f", p.CurrentSpeed), p.CurrentSpeed)
	}
	if st.Disc.InFlight {
		speed := dist(0, 0, st.Disc.VX, st.Disc.VY)
		ts.SimLog.AddVerbose(tick, "--", "--", "disc", "speed", fmt.Sprintf("%.2f", speed), speed)
	}
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.Sim.Tick()
}

// SimSnapshot is a lightweight state summary at a tick.
type SimSnapshot struct {
	Tick    int
	Players []PlayerSnapshot
	Disc    Disc
}

// PlayerSnapshot is a lightweight copy of a player's state at a tick.
type PlayerSnapshot struct {
	ID      string
	Team    Team
	X, Y    float64
	Speed   float64
	Motion  MotionState
	HasDisc bool
	IsMark  bool
}

// Snapshot returns the current state of all players and the disc.
func (ts *TestSim) Snapshot() SimSnapshot {
	st := ts.Sim.State
	snap := SimSnapshot{Tick: ts.Sim.Tick(), Disc: st.Disc}
	for _, p := range st.Players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:      p.ID,
			Team:    p.Team,
			X:       p.X,
			Y:       p.Y,
			Speed:   p.CurrentSpeed,
			Motion:  p.Motion,
			HasDisc: p.HasDisc,
			IsMark:  p.IsMark,
		})
	}
	return snap
}
