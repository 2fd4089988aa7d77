package trust

import (
	"time"

	"sidecoach/internal/advice"
)

// #region grade

// Grade describes whether previously issued advice was acted on.
type Grade string

const (
	GradeFull      Grade = "full"
	GradePartial   Grade = "partial"
	GradeAmbiguous Grade = "ambiguous"
	GradeNone      Grade = "none"
	GradeDelayed   Grade = "delayed"
)

// Followed reports whether the grade counts as the operator acting on the
// advice. Ambiguous counts: absence of evidence is not evidence of refusal.
func (g Grade) Followed() bool {
	switch g {
	case GradeFull, GradePartial, GradeAmbiguous, GradeDelayed:
		return true
	}
	return false
}

// weightMultiplier scales a record's certainty into its history weight.
// Clear signals (full, none) carry full weight; partial and ambiguous
// reads are discounted.
func (g Grade) weightMultiplier() float64 {
	switch g {
	case GradeFull, GradeNone:
		return 1.0
	case GradeDelayed:
		return 0.7
	case GradePartial:
		return 0.5
	case GradeAmbiguous:
		return 0.2
	}
	return 0
}

// #endregion grade

// #region outcome

// Outcome labels what happened after the advice, independent of whether it
// was followed.
type Outcome string

const (
	OutcomePositive Outcome = "positive"
	OutcomeNegative Outcome = "negative"
	OutcomeNeutral  Outcome = "neutral"
	OutcomeUnknown  Outcome = "unknown"
)

// #endregion outcome

// #region record

// Record is one compliance observation for one issued advice.
type Record struct {
	AdviceID       string
	Category       advice.Category
	Grade          Grade
	Certainty      float64
	Outcome        Outcome
	LatencySeconds float64 // session seconds from issue to observation; valid when Followed
	CreatedAt      time.Time
}

// weight is the record's contribution to profile computation.
func (r Record) weight() float64 {
	return r.Certainty * r.Grade.weightMultiplier()
}

// #endregion record

// #region profile

// Verbosity is how often the pipeline should speak.
type Verbosity string

const (
	VerbosityHigh   Verbosity = "high"
	VerbosityMedium Verbosity = "medium"
	VerbosityLow    Verbosity = "low"
)

// Explanation is how much reasoning should accompany each message.
type Explanation string

const (
	ExplanationDetailed Explanation = "detailed"
	ExplanationStandard Explanation = "standard"
	ExplanationMinimal  Explanation = "minimal"
)

// Profile is the operator's adaptively-estimated behavior. Mutated only by
// the calibrator's update step; read by the arbitrator.
type Profile struct {
	ComplianceRate     float64
	PositiveRate       float64
	MeanLatencySeconds float64
	Verbosity          Verbosity
	Explanation        Explanation
}

// NeutralProfile is the session-start default.
func NeutralProfile() Profile {
	return Profile{
		ComplianceRate: 0.5,
		PositiveRate:   0.5,
		Verbosity:      VerbosityMedium,
		Explanation:    ExplanationStandard,
	}
}

// #endregion profile
