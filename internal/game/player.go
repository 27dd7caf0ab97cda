package game

import (
	"fmt"
	"math"
)

// Default kinematic profile, yards and seconds.
const (
	DefaultTopSpeed     = 8.0
	DefaultAcceleration = 6.0
	DefaultDeceleration = 9.0
)

// ClickHitRadius is how close a pointer must be to pick a player, in yards.
const ClickHitRadius = 2.0

// Team identifies which side a player is on.
type Team int

const (
	TeamOffense Team = 1
	TeamDefense Team = 2
)

func (t Team) String() string {
	switch t {
	case TeamOffense:
		return "offense"
	case TeamDefense:
		return "defense"
	default:
		return fmt.Sprintf("team(%d)", int(t))
	}
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamOffense {
		return TeamDefense
	}
	return TeamOffense
}

// Player is one body on the field. Flags mirror the wire format; the disc
// itself references its holder by ID.
type Player struct {
	ID         string  `json:"id"`
	Team       Team    `json:"team"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Color      string  `json:"color,omitempty"`
	HasDisc    bool    `json:"hasDisc"`
	IsDefender bool    `json:"isDefender"`
	IsMark     bool    `json:"isMark"`
	// Label pairs an offender with the defender assigned to it.
	Label string `json:"label,omitempty"`

	// Kinematics. Only integrated when the simulation runs with kinematics on.
	VX             float64     `json:"vx,omitempty"`
	VY             float64     `json:"vy,omitempty"`
	Target         *Point      `json:"target,omitempty"`
	PreviousTarget *Point      `json:"previousTarget,omitempty"`
	Speed          float64     `json:"speed,omitempty"`
	Acceleration   float64     `json:"acceleration,omitempty"`
	Deceleration   float64     `json:"deceleration,omitempty"`
	CurrentSpeed   float64     `json:"currentSpeed,omitempty"`
	Motion         MotionState `json:"motion,omitempty"`
}

// NewPlayer returns a player with the default kinematic profile. Defense
// players are flagged as defenders.
func NewPlayer(id string, team Team, x, y float64) Player {
	color := "#d83030"
	if team == TeamDefense {
		color = "#3050d8"
	}
	return Player{
		ID:           id,
		Team:         team,
		X:            x,
		Y:            y,
		Color:        color,
		IsDefender:   team == TeamDefense,
		Speed:        DefaultTopSpeed,
		Acceleration: DefaultAcceleration,
		Deceleration: DefaultDeceleration,
	}
}

// IsOffender is true for offense players that are not holding the disc.
func (p *Player) IsOffender() bool {
	return !p.IsDefender && !p.HasDisc
}

// IsDownfieldDefender is true for defenders other than the mark.
func (p *Player) IsDownfieldDefender() bool {
	return p.IsDefender && !p.IsMark
}

// DistanceTo returns the Euclidean distance from the player to a point.
func (p *Player) DistanceTo(x, y float64) float64 {
	return dist(p.X, p.Y, x, y)
}

// Stop zeroes velocity and clears any movement goal.
func (p *Player) Stop() {
	p.VX, p.VY = 0, 0
	p.CurrentSpeed = 0
	p.Target = nil
	p.PreviousTarget = nil
	p.Motion = MotionIdle
}

// heading is the unit direction of the current velocity.
func (p *Player) heading() (float64, float64, bool) {
	n := math.Hypot(p.VX, p.VY)
	if n == 0 {
		return 0, 0, false
	}
	return p.VX / n, p.VY / n, true
}

// ensureProfile fills a zero kinematic profile from decoded snapshots, and
// gives a moving player that arrived with no motion state the one its speed
// implies.
func (p *Player) ensureProfile() {
	if p.Speed <= 0 {
		p.Speed = DefaultTopSpeed
	}
	if p.Acceleration <= 0 {
		p.Acceleration = DefaultAcceleration
	}
	if p.Deceleration <= 0 {
		p.Deceleration = DefaultDeceleration
	}
	if p.Motion == MotionIdle && p.CurrentSpeed > IdleSpeedThreshold {
		if p.CurrentSpeed >= p.Speed {
			p.Motion = MotionCruising
		} else {
			p.Motion = MotionAccelerating
		}
	}
}
