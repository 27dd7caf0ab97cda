package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Field-Sense/internal/game"
)

const (
	logPanelWidth = 320
	logMaxEntries = 60
	logLineHeight = 14
)

// LogEntry is a single line in the event log.
type LogEntry struct {
	Tick    int
	Player  string
	Team    game.Team
	Message string
}

// EventLog is a ring buffer of simulation events rendered on-screen.
type EventLog struct {
	entries []LogEntry
	head    int
	count   int
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{entries: make([]LogEntry, logMaxEntries)}
}

// Add appends an entry, overwriting the oldest once full.
func (l *EventLog) Add(tick int, player string, team game.Team, msg string) {
	l.entries[l.head] = LogEntry{Tick: tick, Player: player, Team: team, Message: msg}
	l.head = (l.head + 1) % logMaxEntries
	if l.count < logMaxEntries {
		l.count++
	}
}

// AddEvent logs a simulation event, resolving the player's team from st.
func (l *EventLog) AddEvent(e game.Event, st *game.State) {
	var team game.Team
	if p := st.Player(e.PlayerID); p != nil {
		team = p.Team
	}
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += " " + e.Detail
	}
	l.Add(e.Tick, e.PlayerID, team, msg)
}

// Recent returns entries in chronological order (oldest first).
func (l *EventLog) Recent() []LogEntry {
	out := make([]LogEntry, l.count)
	for i := 0; i < l.count; i++ {
		out[i] = l.entries[(l.head-l.count+i+logMaxEntries)%logMaxEntries]
	}
	return out
}

// Draw renders the panel at panelX, newest entry at the bottom.
func (l *EventLog) Draw(screen *ebiten.Image, panelX, panelH int) {
	px := float32(panelX)
	vector.FillRect(screen, px, 0, logPanelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)
	vector.FillRect(screen, px, 0, logPanelWidth, 16, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENT LOG", panelX+8, 0)
	vector.StrokeLine(screen, px, 16, px+logPanelWidth, 16, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := l.Recent()
	maxVisible := (panelH - 24) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	const highlighted = 3
	y := 20
	for i, e := range entries {
		if i >= len(entries)-highlighted {
			vector.FillRect(screen, px+2, float32(y), logPanelWidth-4, logLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		if e.Player != "" {
			vector.FillRect(screen, px+5, float32(y+4), 3, 6, teamColor(e.Team), false)
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%5d [%s] %s", e.Tick, e.Player, e.Message), panelX+12, y-1)
		y += logLineHeight
	}
}
