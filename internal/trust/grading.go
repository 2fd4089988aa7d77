package trust

import (
	"time"

	"sidecoach/internal/advice"
	"sidecoach/internal/snapshot"
)

// #region grade-compliance

// GradeCompliance diffs two consecutive snapshots to infer whether issued
// advice was acted on. Returns ok=false when the snapshots are too
// incomplete to grade the category; no record should be appended in that
// case, guessing is worse than skipping.
func GradeCompliance(adv advice.Advice, before, after *snapshot.Snapshot) (Record, bool) {
	if before == nil || after == nil {
		return Record{}, false
	}

	var (
		grade     Grade
		certainty float64
		ok        bool
	)

	switch adv.Category {
	case advice.CategoryPush:
		grade, certainty, ok = gradePush(before, after)
	case advice.CategoryRetreat:
		grade, certainty, ok = gradeRetreat(before, after)
	case advice.CategoryFarm:
		grade, certainty, ok = gradeFarm(before, after)
	case advice.CategoryEndgame:
		grade, certainty, ok = gradeEndgame(before, after)
	case advice.CategoryTiming, advice.CategoryInfo:
		// Passive observation cannot tell whether the operator took a
		// timing window or merely coincided with it.
		grade, certainty, ok = GradeAmbiguous, 0.3, true
	default:
		grade, certainty, ok = GradeAmbiguous, 0.3, true
	}
	if !ok {
		return Record{}, false
	}

	rec := Record{
		AdviceID:  adv.ID,
		Category:  adv.Category,
		Grade:     grade,
		Certainty: certainty,
		Outcome:   assessOutcome(adv.Category, before, after),
		CreatedAt: time.Now().UTC(),
	}
	if rec.Grade.Followed() {
		rec.LatencySeconds = after.Elapsed - adv.SessionTime
	}
	return rec, true
}

// #endregion grade-compliance

// #region detectors

// gradePush: an opposing objective fell, or at least got chipped below half
// between the two snapshots.
func gradePush(before, after *snapshot.Snapshot) (Grade, float64, bool) {
	if before.Structures == nil || after.Structures == nil {
		return "", 0, false
	}
	if after.EnemyStanding() < before.EnemyStanding() {
		return GradeFull, 0.9, true
	}
	if belowHalfStanding(after) > belowHalfStanding(before) {
		return GradePartial, 0.6, true
	}
	return GradeNone, 0.7, true
}

// belowHalfStanding counts opposing structures still up but under half health.
func belowHalfStanding(s *snapshot.Snapshot) int {
	n := 0
	for _, st := range s.Structures.Enemy {
		if st.Standing() && st.HealthFraction() < 0.5 {
			n++
		}
	}
	return n
}

// gradeRetreat: health recovered, or a death was avoided while low.
func gradeRetreat(before, after *snapshot.Snapshot) (Grade, float64, bool) {
	if before.Hero == nil || after.Hero == nil {
		return "", 0, false
	}
	gain := after.Hero.HealthFraction() - before.Hero.HealthFraction()
	noNewDeaths := after.Deaths <= before.Deaths
	avoidedDeath := before.Hero.HealthFraction() < 0.25 && after.Hero.Alive && noNewDeaths

	switch {
	case gain > 0.15 || avoidedDeath:
		return GradeFull, 0.8, true
	case gain > 0.05:
		return GradePartial, 0.5, true
	case noNewDeaths:
		return GradeAmbiguous, 0.4, true
	default:
		return GradeNone, 0.6, true
	}
}

// gradeFarm: resource-gain rate normalized by elapsed time.
func gradeFarm(before, after *snapshot.Snapshot) (Grade, float64, bool) {
	if before.OwnWorth == nil || after.OwnWorth == nil {
		return "", 0, false
	}
	dt := after.Elapsed - before.Elapsed
	if dt <= 0 {
		return "", 0, false
	}
	rate := (*after.OwnWorth - *before.OwnWorth) / dt
	switch {
	case rate > 0.5:
		return GradeFull, 0.7, true
	case rate > 0.2:
		return GradePartial, 0.5, true
	default:
		return GradeNone, 0.6, true
	}
}

// gradeEndgame: target structure destroyed, damaged, or untouched. A
// missing structures section on either side means we cannot tell a
// destroyed core from an unreported one, so the pair is skipped.
func gradeEndgame(before, after *snapshot.Snapshot) (Grade, float64, bool) {
	if before.Structures == nil || after.Structures == nil {
		return "", 0, false
	}
	coreBefore := before.EnemyCore()
	if coreBefore == nil {
		return "", 0, false
	}
	coreAfter := after.EnemyCore()
	if coreAfter == nil || !coreAfter.Standing() {
		return GradeFull, 1.0, true
	}
	if coreAfter.Health < coreBefore.Health {
		return GradePartial, 0.7, true
	}
	return GradeNone, 0.6, true
}

// #endregion detectors

// #region outcome

// assessOutcome labels what happened after the advice. The asymmetry is
// deliberate: only clearly good results are labeled positive, everything
// short of that stays unknown.
func assessOutcome(category advice.Category, before, after *snapshot.Snapshot) Outcome {
	noNewDeaths := after.Deaths <= before.Deaths

	switch category {
	case advice.CategoryPush, advice.CategoryEndgame:
		if gainedGround(before, after) && noNewDeaths {
			return OutcomePositive
		}
	case advice.CategoryRetreat:
		if noNewDeaths {
			return OutcomePositive
		}
	}
	return OutcomeUnknown
}

// gainedGround: an opposing structure fell or the opposing core took damage.
func gainedGround(before, after *snapshot.Snapshot) bool {
	if before.Structures == nil || after.Structures == nil {
		return false
	}
	if after.EnemyStanding() < before.EnemyStanding() {
		return true
	}
	cb, ca := before.EnemyCore(), after.EnemyCore()
	return cb != nil && ca != nil && ca.Health < cb.Health
}

// #endregion outcome
