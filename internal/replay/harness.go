package replay

import (
	"fmt"
	"time"

	"sidecoach/internal/delivery"
	"sidecoach/internal/ledger"
	"sidecoach/internal/pipeline"
	"sidecoach/internal/rules"
)

// #region types

// TickOutcome pairs a snapshot index with what the pipeline did with it.
type TickOutcome struct {
	Index  int
	Report pipeline.TickReport
}

// Result is the outcome of replaying a full fixture.
type Result struct {
	Ticks    []TickOutcome
	Summary  ledger.Summary
	Messages []string // everything the channel would have said
}

// #endregion types

// #region replay

// replayEpoch anchors the fake clock so runs are reproducible.
var replayEpoch = time.Unix(1700000000, 0).UTC()

// Replay runs a recorded snapshot stream through a fresh pipeline,
// entirely in memory. The limiter's clock is driven by each snapshot's
// session time, so spacing behaves exactly as it did live.
func Replay(fix *Fixture, cfg pipeline.Config) (Result, error) {
	catalog, err := rules.Load(fix.RulesPath)
	if err != nil {
		return Result{}, fmt.Errorf("load rules: %w", err)
	}

	now := replayEpoch
	cfg.Clock = func() time.Time { return now }
	cfg.SynchronousDelivery = true

	channel := &delivery.CaptureChannel{}
	pipe := pipeline.New(catalog, channel, nil, cfg)

	sessionID := fix.SessionID
	if sessionID == "" {
		sessionID = "replay"
	}
	pipe.StartSession(sessionID)

	result := Result{}
	for i := range fix.Snapshots {
		snap := fix.Snapshots[i]
		now = replayEpoch.Add(time.Duration(snap.Elapsed * float64(time.Second)))
		report := pipe.Tick(&snap)
		result.Ticks = append(result.Ticks, TickOutcome{Index: i, Report: report})
	}

	result.Summary = pipe.EndSession()
	result.Messages = channel.Messages()
	return result, nil
}

// Verify compares a replay result against the fixture's expectations and
// returns one line per mismatch.
func Verify(fix *Fixture, result Result) []string {
	var mismatches []string
	for _, exp := range fix.Expected {
		if exp.Tick < 0 || exp.Tick >= len(result.Ticks) {
			mismatches = append(mismatches, fmt.Sprintf("tick %d: not replayed", exp.Tick))
			continue
		}
		got := result.Ticks[exp.Tick].Report
		if len(got.Delivered) != exp.Delivered {
			mismatches = append(mismatches, fmt.Sprintf(
				"tick %d: delivered %d, expected %d", exp.Tick, len(got.Delivered), exp.Delivered))
		}
		if got.Suppressed != exp.Suppressed {
			mismatches = append(mismatches, fmt.Sprintf(
				"tick %d: suppressed %d, expected %d", exp.Tick, got.Suppressed, exp.Suppressed))
		}
		if got.Queued != exp.Queued {
			mismatches = append(mismatches, fmt.Sprintf(
				"tick %d: queued %d, expected %d", exp.Tick, got.Queued, exp.Queued))
		}
	}
	return mismatches
}

// #endregion replay
