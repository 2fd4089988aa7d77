package arbiter

import (
	"fmt"

	"sidecoach/internal/advice"
	"sidecoach/internal/confidence"
	"sidecoach/internal/trust"
)

// #region config

// Config holds the arbitration thresholds.
type Config struct {
	SuppressBelow      float64 // confidence floor for any non-exempt advice
	LowPriorityBelow   float64 // stricter confidence floor for LOW priority
	OverrideConfidence float64 // confidence that bypasses verbosity and confidence suppression
	OverrideMagnitude  float64 // resource-delta magnitude that does the same
}

// DefaultConfig returns the shipped thresholds.
func DefaultConfig() Config {
	return Config{
		SuppressBelow:      0.5,
		LowPriorityBelow:   0.7,
		OverrideConfidence: 0.85,
		OverrideMagnitude:  10000,
	}
}

// #endregion config

// #region arbiter

// Arbiter applies the fixed-precedence delivery/suppression rules.
type Arbiter struct {
	config Config
}

// NewArbiter creates an arbiter with the given thresholds.
func NewArbiter(config Config) *Arbiter {
	return &Arbiter{config: config}
}

// Decide runs the precedence order. Override rules are checked first; the
// high-value override deliberately precedes confidence suppression, so a
// huge resource swing is surfaced even on a shaky read.
func (a *Arbiter) Decide(adv advice.Advice, conf confidence.Result, profile trust.Profile) Decision {
	// 1. GAME_ENDING: never suppressed, never delayed.
	if adv.Priority == advice.GameEnding {
		return a.deliver(adv, conf, profile, "game-ending priority")
	}

	// 2. CRITICAL: never suppressed here; only the limiter's own
	// critical cooldown applies downstream.
	if adv.Priority == advice.Critical {
		return a.deliver(adv, conf, profile, "critical priority")
	}

	// 3. Intentional silence: exempt from verbosity suppression, still
	// subject to confidence suppression, and only worth saying to an
	// operator who has earned detailed explanations.
	if adv.IntentionalSilence {
		if conf.Score < a.config.SuppressBelow {
			return suppress(adv, conf, fmt.Sprintf("confidence %.2f below %.2f", conf.Score, a.config.SuppressBelow))
		}
		if profile.Explanation != trust.ExplanationDetailed {
			return suppress(adv, conf, "silence explanations reserved for detailed mode")
		}
		return a.deliver(adv, conf, profile, "intentional silence, detailed mode")
	}

	// 4. High-value override.
	if conf.Score > a.config.OverrideConfidence {
		return a.deliver(adv, conf, profile, fmt.Sprintf("override: confidence %.2f", conf.Score))
	}
	if adv.DeltaMagnitude() > a.config.OverrideMagnitude {
		return a.deliver(adv, conf, profile, fmt.Sprintf("override: resource delta %.0f", adv.DeltaMagnitude()))
	}

	// 5. Confidence suppression.
	if conf.Score < a.config.SuppressBelow {
		return suppress(adv, conf, fmt.Sprintf("confidence %.2f below %.2f", conf.Score, a.config.SuppressBelow))
	}
	if conf.Score < a.config.LowPriorityBelow && adv.Priority == advice.Low {
		return suppress(adv, conf, fmt.Sprintf("low priority at confidence %.2f below %.2f", conf.Score, a.config.LowPriorityBelow))
	}

	// 6. Trust-based verbosity suppression.
	if profile.Verbosity == trust.VerbosityLow && adv.Priority == advice.Low {
		return suppress(adv, conf, "low verbosity profile, low priority")
	}

	return a.deliver(adv, conf, profile, "passed arbitration")
}

// deliver enriches the advice text for delivery.
func (a *Arbiter) deliver(adv advice.Advice, conf confidence.Result, profile trust.Profile, reason string) Decision {
	text := soften(adv.Text, conf.Score)
	if profile.Explanation == trust.ExplanationDetailed {
		text = appendCaveats(text, conf.Caveats)
	}
	return Decision{
		Action:     ActionDeliver,
		Reason:     reason,
		Text:       text,
		Advice:     adv,
		Confidence: conf,
	}
}

// suppress records a no-output decision.
func suppress(adv advice.Advice, conf confidence.Result, reason string) Decision {
	return Decision{
		Action:     ActionSuppress,
		Reason:     reason,
		Advice:     adv,
		Confidence: conf,
	}
}

// #endregion arbiter
