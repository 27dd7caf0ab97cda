package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Garsondee/Field-Sense/internal/game"
)

func TestFirstTick(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 3, Category: "disc", Key: "throw"},
		{Tick: 9, Category: "motion", Key: "motion", Value: "idle → accelerating"},
		{Tick: 20, Category: "motion", Key: "motion", Value: "cruising → braking_to_stop"},
	}
	if got := firstTick(entries, "disc", "throw", ""); got != 3 {
		t.Fatalf("throw tick = %d, want 3", got)
	}
	if got := firstTick(entries, "motion", "motion", "braking"); got != 20 {
		t.Fatalf("braking tick = %d, want 20", got)
	}
	if got := firstTick(entries, "disc", "catch", ""); got != -1 {
		t.Fatalf("missing event tick = %d, want -1", got)
	}
}

func TestRunStats_Outcome(t *testing.T) {
	cases := []struct {
		rs   runStats
		want string
	}{
		{runStats{completed: true, caughtBy: "o2", stopTick: -1}, "completed"},
		{runStats{caughtBy: "d3", stopTick: -1}, "intercepted"},
		{runStats{stopTick: 300}, "incomplete"},
		{runStats{stopTick: -1}, "unresolved"},
	}
	for _, c := range cases {
		if got := c.rs.outcome(); got != c.want {
			t.Errorf("outcome(%+v) = %s, want %s", c.rs, got, c.want)
		}
	}
}

func TestRunPassScenario_Deterministic(t *testing.T) {
	params, opt := game.DefaultLayerParams(), game.DefaultOptimizerParams()
	a := runPassScenario(scenarioSampled, 1, 42, 1200, 4, params, opt)
	b := runPassScenario(scenarioSampled, 1, 42, 1200, 4, params, opt)
	if a != b {
		t.Fatalf("same seed gave different runs:\n%+v\n%+v", a, b)
	}
	if a.throwTick < 0 {
		t.Fatal("the thrower never released the disc")
	}
	if a.resolveTick < a.throwTick {
		t.Fatalf("flight did not resolve: %+v", a)
	}
	if a.outcome() == "unresolved" {
		t.Fatal("every flight ends in a catch or a stop")
	}
	if a.hasSum {
		t.Fatal("the sampled scenario does not place defenders")
	}
}

func TestRunPassScenario_DefendedPlacesDefender(t *testing.T) {
	params, opt := game.DefaultLayerParams(), game.DefaultOptimizerParams()
	rs := runPassScenario(scenarioDefended, 1, 7, 1200, 3, params, opt)
	if !rs.hasSum {
		t.Fatal("defended scenario should record combined sums")
	}
	if rs.placements != 1 {
		t.Fatalf("placements = %d, want 1", rs.placements)
	}
}

func TestInfluxRunFields(t *testing.T) {
	rs := runStats{scenario: scenarioDefended, runIndex: 2, seed: 9, throwTick: 10, resolveTick: 40, hasSum: true, sumBefore: 5, sumAfter: 4}
	r := rs.influxRun()
	if r.Scenario != scenarioDefended || r.Index != 2 || r.Seed != 9 {
		t.Fatalf("run tags %+v", r)
	}
	if r.Fields["flight_ticks"] != 30 || r.Fields["sum_after"] != 4.0 {
		t.Fatalf("fields %+v", r.Fields)
	}
}

func TestJoinCounts(t *testing.T) {
	if got := joinCounts(nil); got != "none" {
		t.Fatalf("empty = %q", got)
	}
	got := joinCounts(map[string]int{"o3": 1, "d2": 2})
	if !strings.HasPrefix(got, "d2=2") || !strings.Contains(got, "o3=1") {
		t.Fatalf("joinCounts = %q", got)
	}
}

func TestRunPassScenario_TracesCutterAndFlight(t *testing.T) {
	params, opt := game.DefaultLayerParams(), game.DefaultOptimizerParams()
	rs := runPassScenario(scenarioSampled, 1, 42, 1200, 4, params, opt)
	if rs.cutter == "" {
		t.Fatal("no cutter recorded")
	}
	if rs.cutterEvents == 0 || rs.cutterEvents < rs.arrivals {
		t.Fatalf("cutter events = %d with %d arrivals", rs.cutterEvents, rs.arrivals)
	}
	if !strings.Contains(rs.flightLog, "throw") {
		t.Fatalf("flight log should include the throw:\n%s", rs.flightLog)
	}
	if !strings.HasPrefix(rs.flightLog, fmt.Sprintf("[T=%03d]", rs.throwTick)) {
		t.Fatalf("flight log should start at the throw tick %d:\n%s", rs.throwTick, rs.flightLog)
	}
}
