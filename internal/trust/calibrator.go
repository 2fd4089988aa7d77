package trust

import "log"

// #region calibrator

// historyCap bounds the compliance history; oldest records are evicted.
const historyCap = 100

// updateWindow is how many trailing records the conservative-learning gate
// inspects before allowing a profile update.
const updateWindow = 10

// Calibrator owns the compliance history and the trust profile. All
// mutation happens on the single pipeline goroutine.
type Calibrator struct {
	history []Record
	profile Profile
}

// NewCalibrator starts with an empty history and a neutral profile.
func NewCalibrator() *Calibrator {
	return &Calibrator{profile: NeutralProfile()}
}

// Profile returns the current trust profile.
func (c *Calibrator) Profile() Profile {
	return c.profile
}

// History returns the compliance records observed so far, oldest first.
func (c *Calibrator) History() []Record {
	return c.history
}

// Reset clears history and restores the neutral profile. Called at session
// boundaries.
func (c *Calibrator) Reset() {
	c.history = nil
	c.profile = NeutralProfile()
}

// #endregion calibrator

// #region observe

// Observe appends a compliance record and re-runs the gated profile update.
func (c *Calibrator) Observe(rec Record) {
	c.history = append(c.history, rec)
	if len(c.history) > historyCap {
		c.history = c.history[len(c.history)-historyCap:]
	}
	c.maybeUpdate()
}

// maybeUpdate applies conservative learning: the profile moves only when
// there is enough history and the trailing window is either consistent
// (low variance of followed/not-followed) or confidently graded.
func (c *Calibrator) maybeUpdate() {
	if len(c.history) < updateWindow {
		return
	}

	window := c.history[len(c.history)-updateWindow:]
	variance := followedVariance(window)
	meanCertainty := meanCertainty(window)
	if variance >= 0.3 && meanCertainty <= 0.7 {
		log.Printf("[TRUST] update gated: variance=%.3f mean_certainty=%.3f", variance, meanCertainty)
		return
	}

	c.profile = computeProfile(c.history)
}

// #endregion observe

// #region compute

// computeProfile derives a fresh profile from the full history using
// certainty-and-grade weighted rates.
func computeProfile(history []Record) Profile {
	var (
		totalW      float64
		followedW   float64
		positiveW   float64
		latencyW    float64
		latencyWSum float64
	)
	for _, rec := range history {
		w := rec.weight()
		totalW += w
		if !rec.Grade.Followed() {
			continue
		}
		followedW += w
		if rec.Outcome == OutcomePositive {
			positiveW += w
		}
		latencyW += rec.Certainty
		latencyWSum += rec.Certainty * rec.LatencySeconds
	}

	p := Profile{}
	if totalW > 0 {
		p.ComplianceRate = clamp01(followedW / totalW)
	}
	if followedW > 0 {
		p.PositiveRate = clamp01(positiveW / followedW)
	}
	if latencyW > 0 {
		p.MeanLatencySeconds = latencyWSum / latencyW
	}

	switch {
	case p.ComplianceRate > 0.75:
		p.Verbosity = VerbosityLow
		p.Explanation = ExplanationMinimal
	case p.ComplianceRate < 0.25:
		p.Verbosity = VerbosityHigh
		p.Explanation = ExplanationDetailed
	default:
		p.Verbosity = VerbosityMedium
		p.Explanation = ExplanationStandard
	}
	return p
}

// #endregion compute

// #region helpers

// followedVariance is the population variance of the window's binary
// followed/not-followed outcomes.
func followedVariance(window []Record) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, rec := range window {
		if rec.Grade.Followed() {
			sum++
		}
	}
	mean := sum / float64(len(window))
	var variance float64
	for _, rec := range window {
		x := 0.0
		if rec.Grade.Followed() {
			x = 1.0
		}
		variance += (x - mean) * (x - mean)
	}
	return variance / float64(len(window))
}

// meanCertainty averages the window's grading certainties.
func meanCertainty(window []Record) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, rec := range window {
		sum += rec.Certainty
	}
	return sum / float64(len(window))
}

// clamp01 bounds a rate to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
