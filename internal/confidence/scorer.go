package confidence

import (
	"sidecoach/internal/advice"
	"sidecoach/internal/snapshot"
)

// #region score

// Score computes a confidence result for advice of the given category
// against a snapshot, with no timing window supplied.
func Score(snap *snapshot.Snapshot, category advice.Category) Result {
	return score(snap, category, 0, false)
}

// ScoreWindow is Score with an explicit timing-window width in seconds.
func ScoreWindow(snap *snapshot.Snapshot, category advice.Category, windowSeconds float64) Result {
	return score(snap, category, windowSeconds, true)
}

// score is a pure function of its inputs: four clamped factors combined by
// the category's weight profile, plus threshold-driven caveats.
func score(snap *snapshot.Snapshot, category advice.Category, window float64, hasWindow bool) Result {
	f := Factors{
		Completeness: clamp(completenessFactor(snap)),
		Visibility:   clamp(visibilityFactor(snap)),
		Timing:       clamp(timingFactor(window, hasWindow)),
		Resource:     clamp(resourceFactor(snap)),
	}

	w := weightsFor(category)
	total := f.Completeness*w.Completeness +
		f.Visibility*w.Visibility +
		f.Timing*w.Timing +
		f.Resource*w.Resource

	return Result{
		Score:   clamp(total),
		Factors: f,
		Caveats: caveats(f),
	}
}

// weightsFor selects the weight profile for a category.
func weightsFor(category advice.Category) Weights {
	if category == advice.CategoryTiming {
		return opportunityWeights
	}
	return standardWeights
}

// #endregion score

// #region factors

// completenessFactor penalizes missing core sections, scaled by the
// fraction of expected teammates actually present.
func completenessFactor(snap *snapshot.Snapshot) float64 {
	if snap == nil {
		return 0
	}
	present := float64(snap.PresentSections()) / float64(snapshot.CoreSections)
	return present * snap.TeammateFraction()
}

// visibilityFactor is the observable fraction of the opposing roster,
// boosted when positional data exists and penalized when three or more
// opponents are unaccounted for.
func visibilityFactor(snap *snapshot.Snapshot) float64 {
	if snap == nil || len(snap.Enemies) == 0 {
		return 0
	}
	ratio := float64(snap.VisibleEnemies()) / float64(len(snap.Enemies))
	if snap.AnyEnemyPosition() {
		ratio += 0.2
		if ratio > 1 {
			ratio = 1
		}
	}
	if snap.MissingEnemies() >= 3 {
		ratio *= 0.7
	}
	return ratio
}

// timingFactor is a step function of the window width; absent a window the
// factor is neutral.
func timingFactor(window float64, hasWindow bool) float64 {
	if !hasWindow {
		return 0.5
	}
	switch {
	case window < 30:
		return 0.9
	case window < 60:
		return 0.8
	case window < 120:
		return 0.6
	default:
		return 0.4
	}
}

// resourceFactor grades how much of either side's economy is known.
func resourceFactor(snap *snapshot.Snapshot) float64 {
	if snap == nil {
		return 0.3
	}
	ownKnown := snap.OwnWorth != nil
	enemyKnown := snap.EnemyWorth != nil
	switch {
	case !ownKnown && !enemyKnown:
		return 0.3
	case ownKnown && !enemyKnown:
		return 0.6
	default:
		return 0.5 + 0.5*snap.EnemyWorthFraction()
	}
}

// #endregion factors

// #region caveats

// caveats compares each factor to its fixed threshold. A fully clean
// reading still gets one caveat so downstream text always has something
// honest to attach.
func caveats(f Factors) []string {
	var out []string
	if f.Completeness < 0.7 {
		out = append(out, "snapshot data incomplete")
	}
	if f.Visibility < 0.6 {
		out = append(out, "enemy positions uncertain")
	}
	if f.Timing < 0.7 {
		out = append(out, "timing window is wide")
	}
	if f.Resource < 0.7 {
		out = append(out, "resource totals unreliable")
	}
	if len(out) == 0 {
		out = append(out, "reading fully reliable")
	}
	return out
}

// #endregion caveats

// #region helpers

// clamp bounds a score to [0,1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
