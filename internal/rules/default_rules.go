package rules

import (
	"sidecoach/internal/advice"
)

// #region default-rules

// defaultRules is the shipped catalog. Order is load-bearing: earlier
// rules represent sharper calls and their advice reaches the arbitrator
// first.
func defaultRules() []Rule {
	return []Rule{
		{
			Name:     "defend-core",
			Category: advice.CategoryRetreat,
			Priority: advice.GameEnding,
			Template: "Everything back to base now. Your core is about to fall.",
			When: func(ctx Context, t Tuning) (bool, *advice.ResourceDelta) {
				core := ctx.Curr.OwnCore()
				return core != nil && core.Standing() && core.HealthFraction() < t.CoreThreatFraction, nil
			},
		},
		{
			Name:     "end-push",
			Category: advice.CategoryEndgame,
			Priority: advice.GameEnding,
			Template: "Commit everything to their core. It is ready to fall.",
			When: func(ctx Context, t Tuning) (bool, *advice.ResourceDelta) {
				core := ctx.Curr.EnemyCore()
				return core != nil && core.Standing() && core.HealthFraction() < t.CoreThreatFraction, nil
			},
		},
		{
			Name:     "retreat-low-health",
			Category: advice.CategoryRetreat,
			Priority: advice.Critical,
			Template: "Back off and reset. You are low and enemies are unaccounted for.",
			When: func(ctx Context, t Tuning) (bool, *advice.ResourceDelta) {
				if ctx.Curr.Hero == nil || !ctx.Curr.Hero.Alive {
					return false, nil
				}
				return ctx.Curr.Hero.HealthFraction() < t.RetreatHealthFraction &&
					ctx.Curr.MissingEnemies() >= t.RetreatMissingEnemies, nil
			},
		},
		{
			Name:     "push-window",
			Category: advice.CategoryPush,
			Priority: advice.High,
			Template: "Take a tower. You are {amount} gold ahead.",
			When: func(ctx Context, t Tuning) (bool, *advice.ResourceDelta) {
				if ctx.Curr.OwnWorth == nil || ctx.Curr.EnemyWorth == nil {
					return false, nil
				}
				lead := *ctx.Curr.OwnWorth - *ctx.Curr.EnemyWorth
				if lead <= t.PushWorthLead || ctx.Curr.EnemyStanding() == 0 {
					return false, nil
				}
				delta := &advice.ResourceDelta{Amount: lead}
				if *ctx.Curr.EnemyWorth > 0 {
					delta.Percent = lead / *ctx.Curr.EnemyWorth * 100
				}
				return true, delta
			},
		},
		{
			Name:     "spike-window",
			Category: advice.CategoryTiming,
			Priority: advice.Medium,
			Template: "Your power spike window is open. Look for a fight.",
			Window: func(t Tuning) float64 {
				return t.SpikeWindowSeconds
			},
			When: func(ctx Context, t Tuning) (bool, *advice.ResourceDelta) {
				return ctx.Curr.Elapsed >= t.SpikeStartSeconds &&
					ctx.Curr.Elapsed < t.SpikeStartSeconds+t.SpikeWindowSeconds, nil
			},
		},
		{
			Name:     "farm-stall",
			Category: advice.CategoryFarm,
			Priority: advice.Medium,
			Template: "Income has stalled. Find a safe wave to farm.",
			When: func(ctx Context, t Tuning) (bool, *advice.ResourceDelta) {
				if ctx.Prev == nil || ctx.Prev.OwnWorth == nil || ctx.Curr.OwnWorth == nil {
					return false, nil
				}
				dt := ctx.Curr.Elapsed - ctx.Prev.Elapsed
				if dt <= 0 {
					return false, nil
				}
				rate := (*ctx.Curr.OwnWorth - *ctx.Prev.OwnWorth) / dt
				return rate < t.FarmRateFloor, nil
			},
		},
		{
			Name:     "hold-steady",
			Category: advice.CategoryInfo,
			Priority: advice.Low,
			Silence:  true,
			Template: "Nothing worth calling right now. The state does not favor a move.",
			When: func(ctx Context, t Tuning) (bool, *advice.ResourceDelta) {
				// Only meaningful when we can actually see the board.
				return ctx.Curr.Hero != nil && ctx.Curr.Structures != nil, nil
			},
		},
	}
}

// #endregion default-rules
