package game

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownPlayer       = errors.New("unknown player")
	ErrInvalidState        = errors.New("invalid game state")
	ErrInvalidTrainingData = errors.New("invalid training data")
)

func unknownPlayer(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownPlayer, id)
}

// State is a complete, self-contained snapshot of the field, the players and
// the disc. It is the unit passed to every scalar field and optimizer and the
// payload of the remote compute contract.
type State struct {
	Field   Field    `json:"field"`
	Players []Player `json:"players"`
	Disc    Disc     `json:"disc"`
}

// NewState returns an empty state on the given field.
func NewState(f Field) *State {
	return &State{Field: f.normalized()}
}

// Clone deep-copies the state, including per-player target pointers.
func (s *State) Clone() *State {
	out := &State{
		Field:   s.Field,
		Players: make([]Player, len(s.Players)),
		Disc:    s.Disc,
	}
	copy(out.Players, s.Players)
	for i := range out.Players {
		p := &out.Players[i]
		if p.Target != nil {
			t := *p.Target
			p.Target = &t
		}
		if p.PreviousTarget != nil {
			t := *p.PreviousTarget
			p.PreviousTarget = &t
		}
	}
	return out
}

// AddPlayer appends a player, clamped into the field.
func (s *State) AddPlayer(p Player) *Player {
	p.X, p.Y = s.Field.Clamp(p.X, p.Y)
	s.Players = append(s.Players, p)
	return &s.Players[len(s.Players)-1]
}

// Player looks a player up by ID.
func (s *State) Player(id string) *Player {
	if id == "" {
		return nil
	}
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// Holder resolves the disc's holder reference.
func (s *State) Holder() *Player {
	return s.Player(s.Disc.HolderID)
}

// Thrower is the player in possession: the disc's holder, or for snapshots
// that only carry the flag, the first player with HasDisc.
func (s *State) Thrower() *Player {
	if h := s.Holder(); h != nil {
		return h
	}
	for i := range s.Players {
		if s.Players[i].HasDisc {
			return &s.Players[i]
		}
	}
	return nil
}

// Mark returns the defender currently marking the thrower, if any.
func (s *State) Mark() *Player {
	for i := range s.Players {
		if s.Players[i].IsMark {
			return &s.Players[i]
		}
	}
	return nil
}

// Offender returns the first offense player without the disc, optionally
// restricted to a label.
func (s *State) Offender(label string) *Player {
	for i := range s.Players {
		p := &s.Players[i]
		if p.IsOffender() && (label == "" || p.Label == label) {
			return p
		}
	}
	return nil
}

// DownfieldDefender returns the first non-mark defender, optionally
// restricted to a label.
func (s *State) DownfieldDefender(label string) *Player {
	for i := range s.Players {
		p := &s.Players[i]
		if p.IsDownfieldDefender() && (label == "" || p.Label == label) {
			return p
		}
	}
	return nil
}

// MovePlayer places a player instantly, clamped into the field. A held disc
// moves with its holder.
func (s *State) MovePlayer(id string, x, y float64) error {
	p := s.Player(id)
	if p == nil {
		return unknownPlayer(id)
	}
	p.X, p.Y = s.Field.Clamp(x, y)
	p.Stop()
	if p.ID == s.Disc.HolderID {
		s.Disc.X, s.Disc.Y = p.X, p.Y
	}
	return nil
}

// SetTarget gives a player a clamped movement goal for the kinematic model.
func (s *State) SetTarget(id string, x, y float64) error {
	p := s.Player(id)
	if p == nil {
		return unknownPlayer(id)
	}
	tx, ty := s.Field.Clamp(x, y)
	p.Target = &Point{X: tx, Y: ty}
	return nil
}

// reassignMark keeps exactly one mark on the team opposing the holder. The
// nearest eligible defender takes over when the current mark is not valid.
func (s *State) reassignMark() {
	holder := s.Holder()
	if holder == nil {
		return
	}
	if m := s.Mark(); m != nil && m.IsDefender && m.Team != holder.Team {
		return
	}
	best := -1
	bestDist := math.Inf(1)
	for i := range s.Players {
		p := &s.Players[i]
		p.IsMark = false
		if !p.IsDefender || p.Team == holder.Team {
			continue
		}
		if d := p.DistanceTo(holder.X, holder.Y); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		s.Players[best].IsMark = true
	}
}

// Validate checks the possession and marking invariants of a snapshot.
func (s *State) Validate() error {
	f := s.Field.normalized()
	if !finite(f.FieldLength) || !finite(f.FieldWidth) || !finite(f.EndZoneDepth) || !finite(f.TotalLength) ||
		f.FieldLength <= 0 || f.FieldWidth <= 0 || f.EndZoneDepth < 0 {
		return fmt.Errorf("%w: bad field dimensions %+v", ErrInvalidState, s.Field)
	}
	if f.TotalLength > MaxFieldYards || f.FieldLength > MaxFieldYards || f.FieldWidth > MaxFieldYards {
		return fmt.Errorf("%w: field %gx%g exceeds %g yd", ErrInvalidState, f.TotalLength, f.FieldWidth, MaxFieldYards)
	}
	seen := make(map[string]struct{}, len(s.Players))
	holders, marks := 0, 0
	var mark *Player
	for i := range s.Players {
		p := &s.Players[i]
		if p.ID == "" {
			return fmt.Errorf("%w: player %d has no id", ErrInvalidState, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate player id %q", ErrInvalidState, p.ID)
		}
		seen[p.ID] = struct{}{}
		if !finite(p.X) || !finite(p.Y) {
			return fmt.Errorf("%w: player %q has non-finite position", ErrInvalidState, p.ID)
		}
		if p.HasDisc {
			holders++
		}
		if p.IsMark {
			marks++
			mark = p
		}
	}
	if holders > 1 {
		return fmt.Errorf("%w: %d players hold the disc", ErrInvalidState, holders)
	}
	if marks > 1 {
		return fmt.Errorf("%w: %d marks", ErrInvalidState, marks)
	}
	d := s.Disc
	if !finite(d.X) || !finite(d.Y) || !finite(d.VX) || !finite(d.VY) {
		return fmt.Errorf("%w: disc has non-finite kinematics", ErrInvalidState)
	}
	if d.InFlight && d.Held() {
		return fmt.Errorf("%w: disc both in flight and held", ErrInvalidState)
	}
	if d.Held() {
		h := s.Holder()
		if h == nil {
			return fmt.Errorf("%w: %w", ErrInvalidState, unknownPlayer(d.HolderID))
		}
		if !h.HasDisc {
			return fmt.Errorf("%w: holder %q not flagged hasDisc", ErrInvalidState, h.ID)
		}
	}
	if mark != nil {
		if !mark.IsDefender {
			return fmt.Errorf("%w: mark %q is not a defender", ErrInvalidState, mark.ID)
		}
		if t := s.Thrower(); t != nil && t.Team == mark.Team {
			return fmt.Errorf("%w: mark %q is on the thrower's team", ErrInvalidState, mark.ID)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
