package game

import (
	"fmt"
	"math"
)

// Kinematic thresholds, yards and yards/second.
const (
	ArrivalRadius          = 0.5
	TurnAlignmentThreshold = 0.7 // cos of roughly 45 degrees
	TurnCheckMinSpeed      = 1.0
	TurnExitSpeed          = 2.0
	IdleSpeedThreshold     = 0.1
)

// MotionState is the speed-profile phase of a moving player.
type MotionState int

const (
	MotionIdle          MotionState = iota // stationary, no target
	MotionAccelerating                     // closing on top speed
	MotionCruising                         // at top speed
	MotionBrakingToStop                    // critically-damped approach or coasting to rest
	MotionBrakingToTurn                    // forced slowdown after a sharp change of goal
)

var motionNames = [...]string{
	MotionIdle:          "idle",
	MotionAccelerating:  "accelerating",
	MotionCruising:      "cruising",
	MotionBrakingToStop: "braking_to_stop",
	MotionBrakingToTurn: "braking_to_turn",
}

func (m MotionState) String() string {
	if m < 0 || int(m) >= len(motionNames) {
		return "unknown"
	}
	return motionNames[m]
}

// MarshalText encodes the state by name.
func (m MotionState) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(motionNames) {
		return nil, fmt.Errorf("invalid motion state %d", int(m))
	}
	return []byte(motionNames[m]), nil
}

// UnmarshalText decodes a state name.
func (m *MotionState) UnmarshalText(b []byte) error {
	for i, name := range motionNames {
		if name == string(b) {
			*m = MotionState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown motion state %q", string(b))
}

// motionTransitions lists every legal edge of the speed-profile machine.
var motionTransitions = map[MotionState][]MotionState{
	MotionIdle:          {MotionAccelerating, MotionCruising, MotionBrakingToStop},
	MotionAccelerating:  {MotionCruising, MotionBrakingToStop, MotionBrakingToTurn, MotionIdle},
	MotionCruising:      {MotionAccelerating, MotionBrakingToStop, MotionBrakingToTurn, MotionIdle},
	MotionBrakingToStop: {MotionAccelerating, MotionCruising, MotionBrakingToTurn, MotionIdle},
	MotionBrakingToTurn: {MotionAccelerating, MotionBrakingToStop, MotionIdle},
}

// CanTransition reports whether the machine allows moving from m to next.
// Staying in the same state is always allowed.
func (m MotionState) CanTransition(next MotionState) bool {
	if m == next {
		return true
	}
	for _, s := range motionTransitions[m] {
		if s == next {
			return true
		}
	}
	return false
}

func (p *Player) setMotion(next MotionState) {
	if p.Motion.CanTransition(next) {
		p.Motion = next
	}
}

// stepPlayer integrates one player for dt seconds and clamps the result into
// the field. It reports whether the player reached its target this tick.
func stepPlayer(p *Player, f Field, dt float64) bool {
	p.ensureProfile()
	arrived := false
	if p.Target == nil {
		coast(p, dt)
	} else {
		arrived = steer(p, dt)
	}
	p.X, p.Y = f.Clamp(p.X, p.Y)
	return arrived
}

// coast decelerates along the current heading until below the idle threshold.
func coast(p *Player, dt float64) {
	if p.CurrentSpeed <= IdleSpeedThreshold {
		p.CurrentSpeed = 0
		p.VX, p.VY = 0, 0
		p.setMotion(MotionIdle)
		return
	}
	hx, hy, _ := p.heading()
	p.CurrentSpeed = math.Max(0, p.CurrentSpeed-p.Deceleration*dt)
	p.VX, p.VY = hx*p.CurrentSpeed, hy*p.CurrentSpeed
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.setMotion(MotionBrakingToStop)
}

func steer(p *Player, dt float64) bool {
	t := *p.Target

	if p.PreviousTarget == nil || *p.PreviousTarget != t {
		if p.CurrentSpeed > TurnCheckMinSpeed && needsTurnBrake(p, t) {
			p.setMotion(MotionBrakingToTurn)
		}
		p.PreviousTarget = &Point{X: t.X, Y: t.Y}
	}

	if p.Motion == MotionBrakingToTurn {
		// Hold the old heading while shedding speed.
		hx, hy, _ := p.heading()
		p.CurrentSpeed = math.Max(0, p.CurrentSpeed-p.Deceleration*dt)
		p.VX, p.VY = hx*p.CurrentSpeed, hy*p.CurrentSpeed
		p.X += p.VX * dt
		p.Y += p.VY * dt
		if p.CurrentSpeed < TurnExitSpeed {
			p.setMotion(MotionAccelerating)
		}
		return false
	}

	dx := t.X - p.X
	dy := t.Y - p.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d < ArrivalRadius {
		p.arrive(t)
		return true
	}

	desired := p.Speed
	braking := p.CurrentSpeed * p.CurrentSpeed / (2 * p.Deceleration)
	if d < braking {
		desired = math.Sqrt(2 * p.Deceleration * d)
	}
	switch {
	case p.CurrentSpeed < desired:
		p.CurrentSpeed = math.Min(desired, p.CurrentSpeed+p.Acceleration*dt)
	case p.CurrentSpeed > desired:
		p.CurrentSpeed = math.Max(desired, p.CurrentSpeed-p.Deceleration*dt)
	}

	switch {
	case d < braking:
		p.setMotion(MotionBrakingToStop)
	case p.CurrentSpeed >= p.Speed:
		p.setMotion(MotionCruising)
	default:
		p.setMotion(MotionAccelerating)
	}

	if p.CurrentSpeed*dt >= d {
		p.arrive(t)
		return true
	}
	p.VX = dx / d * p.CurrentSpeed
	p.VY = dy / d * p.CurrentSpeed
	p.X += p.VX * dt
	p.Y += p.VY * dt
	return false
}

// needsTurnBrake compares the current heading with the bearing to a new goal.
func needsTurnBrake(p *Player, t Point) bool {
	hx, hy, ok := p.heading()
	if !ok {
		return false
	}
	dx := t.X - p.X
	dy := t.Y - p.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d == 0 {
		return false
	}
	return hx*dx/d+hy*dy/d < TurnAlignmentThreshold
}

func (p *Player) arrive(t Point) {
	p.X, p.Y = t.X, t.Y
	p.Stop()
}
