package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event during a headless simulation.
type SimLogEntry struct {
	Tick     int
	Player   string  // player id, or "--" for disc/global events
	Team     string  // "offense", "defense", or "--"
	Category string  // disc, motion, move, place, heatmap
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] o1   disc      catch            (34.0,18.2)
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Player, e.Category, e.Key, e.Value)
}

// SimLog collects structured events during a headless simulation.
// It is unbounded and machine-readable, unlike the viewer's event panel.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick position and speed
// entries are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Verbose reports whether per-tick entries are kept.
func (sl *SimLog) Verbose() bool { return sl.verbose }

// Add records a new entry.
func (sl *SimLog) Add(tick int, player, team, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Player:   player,
		Team:     team,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, player, team, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, player, team, category, key, value, numVal)
}

// AddEvent records a simulation event under its natural category.
func (sl *SimLog) AddEvent(e Event, team string) {
	player := e.PlayerID
	if player == "" {
		player, team = "--", "--"
	}
	category := "move"
	switch e.Kind {
	case EventThrow, EventCatch, EventDiscStop:
		category = "disc"
	case EventMotion:
		category = "motion"
	case EventPlace:
		category = "place"
	}
	value := fmt.Sprintf("(%.1f,%.1f)", e.X, e.Y)
	if e.Detail != "" {
		value += " " + e.Detail
	}
	sl.Add(e.Tick, player, team, category, string(e.Kind), value, 0)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterPlayer returns entries for a specific player id.
func (sl *SimLog) FilterPlayer(id string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Player == id {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the state at a tick.
func (sl *SimLog) Summary(tick int, st *State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", tick)

	moving := map[Team]int{}
	for i := range st.Players {
		p := &st.Players[i]
		if p.Motion != MotionIdle {
			moving[p.Team]++
		}
	}
	fmt.Fprintf(&sb, "Moving: offense=%d  defense=%d\n", moving[TeamOffense], moving[TeamDefense])

	d := st.Disc
	switch {
	case d.InFlight:
		fmt.Fprintf(&sb, "Disc: in flight at (%.1f,%.1f) v=(%.2f,%.2f)\n", d.X, d.Y, d.VX, d.VY)
	case d.Held():
		fmt.Fprintf(&sb, "Disc: held by %s at (%.1f,%.1f)\n", d.HolderID, d.X, d.Y)
	default:
		fmt.Fprintf(&sb, "Disc: loose at (%.1f,%.1f)\n", d.X, d.Y)
	}
	if m := st.Mark(); m != nil {
		fmt.Fprintf(&sb, "Mark: %s\n", m.ID)
	} else {
		sb.WriteString("Mark: none\n")
	}
	fmt.Fprintf(&sb, "Events: throws=%d  catches=%d  stops=%d  arrivals=%d\n",
		sl.CountCategory("disc", string(EventThrow)),
		sl.CountCategory("disc", string(EventCatch)),
		sl.CountCategory("disc", string(EventDiscStop)),
		sl.CountCategory("move", string(EventArrive)))
	return sb.String()
}
