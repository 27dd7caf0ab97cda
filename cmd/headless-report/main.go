package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Field-Sense/internal/config"
	"github.com/Garsondee/Field-Sense/internal/game"
	"github.com/Garsondee/Field-Sense/internal/influx"
	"github.com/Garsondee/Field-Sense/internal/logging"
)

const (
	scenarioSampled  = "sampled-pass"
	scenarioDefended = "defended-pass"
)

type runStats struct {
	runIndex int
	seed     int64
	scenario string

	targetX, targetY float64
	throwDistance    float64

	arriveTick  int
	throwTick   int
	resolveTick int
	stopTick    int

	caughtBy   string
	caughtTeam string
	completed  bool

	sumBefore float64
	sumAfter  float64
	hasSum    bool

	motionChanges int
	arrivals      int
	placements    int

	cutter       string
	cutterEvents int
	flightLog    string
}

func main() {
	var runs int
	var ticks int
	var perSide int
	var seedBase int64
	var seedStep int64
	var scenario string
	var configDir string
	var useInflux bool
	var backupPath string
	var trace bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 1200, "max ticks per phase (cut, flight)")
	flag.IntVar(&perSide, "players", 7, "players per side")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", scenarioSampled, "scenario name")
	flag.StringVar(&configDir, "config", ".", "directory holding "+config.FileName)
	flag.BoolVar(&useInflux, "influx", false, "write each run to InfluxDB (influx.* config keys)")
	flag.StringVar(&backupPath, "influx-backup", "", "write runs as line protocol to this file instead")
	flag.BoolVar(&trace, "trace", false, "print the sim log from throw to resolution for each run")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if perSide < 2 {
		fmt.Println("error: -players must be >= 2")
		return
	}
	if scenario != scenarioSampled && scenario != scenarioDefended {
		fmt.Printf("error: unsupported scenario %q (supported: %s, %s)\n", scenario, scenarioSampled, scenarioDefended)
		return
	}
	if err := config.Load(configDir); err != nil {
		fmt.Println("error:", err)
		return
	}
	logger, closeLog, err := logging.Setup(logging.Options{Name: "headless-report", Level: config.GetString("logLevel")})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer func() { _ = closeLog() }()

	params, err := config.LayerParams()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	opt := config.OptimizerParams()

	sink, closeSink, err := openSink(useInflux || config.GetBool("influx.enabled"), backupPath, logger)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer closeSink()

	fmt.Printf("=== Headless Pass Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d players=%d seed_base=%d seed_step=%d\n\n", scenario, runs, ticks, perSide, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runPassScenario(scenario, i+1, seed, ticks, perSide, params, opt)
		all = append(all, stats)
		printRun(stats, trace)
		if sink != nil {
			if err := sink.WriteRun(context.Background(), stats.influxRun()); err != nil {
				logger.Warn().Err(err).Int("run", stats.runIndex).Msg("influx write failed")
			}
		}
	}

	printAggregate(all)
	if sink != nil {
		logger.Info().Int("written", sink.Written()).Msg("runs exported")
	}
}

// openSink returns nil when no export was asked for.
func openSink(enabled bool, backupPath string, logger zerolog.Logger) (*influx.Sink, func(), error) {
	if backupPath != "" {
		f, err := os.Create(backupPath) // #nosec G304 -- operator-supplied path
		if err != nil {
			return nil, func() {}, fmt.Errorf("creating backup file: %w", err)
		}
		return influx.NewBackupSink(f, logger), func() { _ = f.Close() }, nil
	}
	if !enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sink, err := influx.Connect(ctx, influx.Options{
		URL:    config.GetString("influx.url"),
		Token:  config.GetString("influx.token"),
		Org:    config.GetString("influx.org"),
		Bucket: config.GetString("influx.bucket"),
	}, logger)
	if err != nil {
		return nil, func() {}, err
	}
	return sink, sink.Close, nil
}

// lineupOptions turns the default vertical stack into harness options.
func lineupOptions(perSide int, stackOffset float64) []game.SimOption {
	st := game.VerticalStack(game.DefaultField(), perSide, stackOffset)
	opts := make([]game.SimOption, 0, len(st.Players)+1)
	for _, p := range st.Players {
		opts = append(opts, game.WithLabelledPlayer(p.ID, p.Label, p.Team, p.X, p.Y))
	}
	return append(opts, game.WithHolder(st.Disc.HolderID))
}

// runPassScenario: the first stack offender cuts to a heat-weighted cell, the
// thrower hits it on arrival, and the flight resolves as a catch or a stop.
// The defended variant runs the defender optimizer before the throw.
func runPassScenario(scenario string, runIndex int, seed int64, ticks, perSide int, params game.LayerParams, opt game.OptimizerParams) runStats {
	ts := game.NewTestSim(append(lineupOptions(perSide, opt.StackOffset), game.WithSeed(seed))...)
	ts.Sim.HeatMap.Params = params
	ts.Sim.Optimizer = opt

	rs := runStats{runIndex: runIndex, seed: seed, scenario: scenario, arriveTick: -1, throwTick: -1, resolveTick: -1, stopTick: -1}
	cutter := ts.State().Offender("1")
	pt, ok := game.SampleOffenderPosition(ts.State(), "1", opt, params, ts.Rand())
	if cutter == nil || !ok {
		return rs
	}
	id := cutter.ID
	rs.cutter = id
	rs.targetX, rs.targetY = pt.X, pt.Y
	if err := ts.Sim.SetPlayerTarget(id, pt.X, pt.Y); err == nil {
		ts.RunUntil(func(ts *game.TestSim) bool { return ts.State().Player(id).Target == nil }, ticks)
	}

	if scenario == scenarioDefended {
		rs.sumBefore, rs.hasSum = game.CombinedSum(ts.State(), opt.GridSize, params)
		ts.Sim.PositionDefender("1")
		rs.sumAfter, _ = game.CombinedSum(ts.State(), opt.GridSize, params)
	}

	receiver := ts.State().Player(id)
	thrower := ts.State().Holder()
	rs.throwDistance = math.Hypot(receiver.X-thrower.X, receiver.Y-thrower.Y)
	ts.Throw(receiver.X, receiver.Y, game.DefaultThrowSpeed)
	ts.RunUntil(func(ts *game.TestSim) bool { return !ts.State().Disc.InFlight }, ticks)

	entries := ts.SimLog.Entries()
	rs.arriveTick = firstTick(entries, "move", "arrive", "")
	rs.throwTick = firstTick(entries, "disc", "throw", "")
	rs.stopTick = firstTick(entries, "disc", "disc_stop", "")
	if e, ok := ts.SimLog.LastOf("disc", "catch"); ok {
		rs.caughtBy, rs.caughtTeam = e.Player, e.Team
		rs.resolveTick = e.Tick
		rs.completed = e.Team == game.TeamOffense.String()
	} else {
		rs.resolveTick = rs.stopTick
	}
	rs.motionChanges = ts.SimLog.CountCategory("motion", "motion")
	rs.arrivals = ts.SimLog.CountCategory("move", "arrive")
	rs.placements = ts.SimLog.CountCategory("place", "place")
	rs.cutterEvents = len(ts.SimLog.FilterPlayer(id))
	if rs.throwTick >= 0 {
		to := rs.resolveTick
		if to < 0 {
			to = ts.CurrentTick()
		}
		rs.flightLog = ts.SimLog.FormatRange(rs.throwTick, to)
	}
	return rs
}

func (rs runStats) outcome() string {
	switch {
	case rs.completed:
		return "completed"
	case rs.caughtBy != "":
		return "intercepted"
	case rs.stopTick >= 0:
		return "incomplete"
	}
	return "unresolved"
}

func (rs runStats) flightTicks() int {
	if rs.throwTick < 0 || rs.resolveTick < 0 {
		return -1
	}
	return rs.resolveTick - rs.throwTick
}

func (rs runStats) influxRun() influx.Run {
	fields := map[string]any{
		"completed":      rs.completed,
		"throw_distance": rs.throwDistance,
		"target_x":       rs.targetX,
		"target_y":       rs.targetY,
		"arrive_tick":    rs.arriveTick,
		"flight_ticks":   rs.flightTicks(),
		"motion_changes": rs.motionChanges,
	}
	if rs.hasSum {
		fields["sum_before"] = rs.sumBefore
		fields["sum_after"] = rs.sumAfter
	}
	return influx.Run{Scenario: rs.scenario, Index: rs.runIndex, Seed: rs.seed, Fields: fields}
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats, trace bool) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("cut_target=(%.1f,%.1f) throw_distance=%.1f\n", rs.targetX, rs.targetY, rs.throwDistance)
	fmt.Printf("phase_markers: arrive=%d throw=%d resolve=%d flight_ticks=%d\n",
		rs.arriveTick, rs.throwTick, rs.resolveTick, rs.flightTicks())
	fmt.Printf("outcome=%s caught_by=%s team=%s\n", rs.outcome(), orNone(rs.caughtBy), orNone(rs.caughtTeam))
	fmt.Printf("event_totals: motion=%d arrive=%d place=%d cutter(%s)=%d\n",
		rs.motionChanges, rs.arrivals, rs.placements, orNone(rs.cutter), rs.cutterEvents)
	if rs.hasSum {
		fmt.Printf("combined_sum: before=%.2f after=%.2f delta=%.2f\n", rs.sumBefore, rs.sumAfter, rs.sumAfter-rs.sumBefore)
	}
	if trace && rs.flightLog != "" {
		fmt.Printf("flight_log:\n%s", rs.flightLog)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	outcomes := map[string]int{}
	catchers := map[string]int{}
	totalDistance := 0.0
	totalMotion := 0
	sumDelta := 0.0
	sumRuns := 0
	arriveTicks := make([]int, 0, len(all))
	flightTicks := make([]int, 0, len(all))

	for _, rs := range all {
		outcomes[rs.outcome()]++
		if rs.caughtBy != "" {
			catchers[rs.caughtBy]++
		}
		totalDistance += rs.throwDistance
		totalMotion += rs.motionChanges
		if rs.hasSum {
			sumDelta += rs.sumAfter - rs.sumBefore
			sumRuns++
		}
		if rs.arriveTick >= 0 {
			arriveTicks = append(arriveTicks, rs.arriveTick)
		}
		if ft := rs.flightTicks(); ft >= 0 {
			flightTicks = append(flightTicks, ft)
		}
	}

	fmt.Println("=== Aggregate Pass Report ===")
	fmt.Printf("runs=%d\n", len(all))
	fmt.Printf("outcomes: %s\n", joinCounts(outcomes))
	fmt.Printf("completion_rate=%.0f%%\n", pct(outcomes["completed"], len(all)))
	fmt.Printf("avg_throw_distance=%.1f avg_motion_changes=%.1f\n",
		totalDistance/math.Max(1, float64(len(all))), avg(totalMotion, len(all)))
	fmt.Printf("phase_marker_avg_ticks: arrive=%s flight=%s\n", avgTickString(arriveTicks), avgTickString(flightTicks))
	if sumRuns > 0 {
		fmt.Printf("avg_combined_sum_delta=%.2f\n", sumDelta/float64(sumRuns))
	}
	fmt.Printf("catchers: %s\n", joinCounts(catchers))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func pct(n, of int) float64 {
	return avg(n*100, of)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
