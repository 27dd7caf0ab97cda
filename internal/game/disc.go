package game

import "math"

// Disc flight constants. Drag is applied once per tick, so flight distance
// depends on the tick rate; this is a deliberate approximation.
const (
	DiscDrag          = 0.98
	DiscStopSpeed     = 0.1
	CatchRadius       = 2.0
	DefaultThrowSpeed = 30.0
)

// Disc is the frisbee. While held its position is the holder's position;
// HolderID and InFlight are mutually exclusive.
type Disc struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	HolderID string  `json:"holderId,omitempty"`
	InFlight bool    `json:"inFlight"`
	// LastThrowerID is ignored by catch detection until the disc has left
	// its catch radius.
	LastThrowerID string `json:"lastThrowerId,omitempty"`
}

// Held reports whether someone has the disc.
func (d *Disc) Held() bool {
	return d.HolderID != ""
}

// ThrowDisc releases the disc from its holder toward a target. It is a no-op
// when nobody holds the disc. A target on the disc itself releases it with
// zero velocity, which lands on the next tick.
func (s *State) ThrowDisc(targetX, targetY, speed float64) bool {
	holder := s.Holder()
	if holder == nil {
		return false
	}
	d := &s.Disc
	d.X, d.Y = holder.X, holder.Y

	dx := targetX - d.X
	dy := targetY - d.Y
	n := math.Sqrt(dx*dx + dy*dy)
	if n > 0 {
		d.VX = dx / n * speed
		d.VY = dy / n * speed
	} else {
		d.VX, d.VY = 0, 0
	}
	holder.HasDisc = false
	d.HolderID = ""
	d.LastThrowerID = holder.ID
	d.InFlight = true
	return true
}

// CatchDisc hands the disc to a player, stopping any flight.
func (s *State) CatchDisc(id string) error {
	p := s.Player(id)
	if p == nil {
		return unknownPlayer(id)
	}
	for i := range s.Players {
		s.Players[i].HasDisc = false
	}
	p.HasDisc = true
	d := &s.Disc
	d.HolderID = p.ID
	d.InFlight = false
	d.VX, d.VY = 0, 0
	d.X, d.Y = p.X, p.Y
	d.LastThrowerID = ""
	s.reassignMark()
	return nil
}

// stepDisc integrates flight for dt seconds and resolves catches. It returns
// the catcher's ID and whether the disc came to rest this tick.
func (s *State) stepDisc(dt float64) (caughtBy string, stopped bool) {
	d := &s.Disc
	if !d.InFlight {
		if h := s.Holder(); h != nil {
			d.X, d.Y = h.X, h.Y
		}
		return "", false
	}

	d.X += d.VX * dt
	d.Y += d.VY * dt
	d.X, d.Y = s.Field.Clamp(d.X, d.Y)
	d.VX *= DiscDrag
	d.VY *= DiscDrag
	if math.Abs(d.VX) < DiscStopSpeed && math.Abs(d.VY) < DiscStopSpeed {
		d.InFlight = false
		d.VX, d.VY = 0, 0
		stopped = true
	}

	if i := s.catcherIndex(); i >= 0 {
		id := s.Players[i].ID
		// CatchDisc cannot fail for an index we just found.
		_ = s.CatchDisc(id)
		return id, false
	}
	return "", stopped
}

// catcherIndex returns the first player within CatchRadius of the disc, or -1.
// Player order breaks ties.
func (s *State) catcherIndex() int {
	d := &s.Disc
	for i := range s.Players {
		p := &s.Players[i]
		if p.DistanceTo(d.X, d.Y) > CatchRadius {
			if p.ID == d.LastThrowerID {
				d.LastThrowerID = ""
			}
			continue
		}
		if p.ID == d.LastThrowerID {
			continue
		}
		return i
	}
	return -1
}
