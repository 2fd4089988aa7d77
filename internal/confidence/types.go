package confidence

// #region factors

// Factors is the per-factor breakdown of a confidence score. Each factor
// is independently clamped to [0,1] before weighting.
type Factors struct {
	Completeness float64
	Visibility   float64
	Timing       float64
	Resource     float64
}

// #endregion factors

// #region result

// Result is the outcome of scoring one candidate advice against one
// snapshot. Ephemeral: recomputed every tick, never persisted.
type Result struct {
	Score   float64
	Factors Factors
	Caveats []string
}

// #endregion result

// #region weights

// Weights is a per-category weight profile. Both shipped profiles sum to 1.
type Weights struct {
	Completeness float64
	Visibility   float64
	Timing       float64
	Resource     float64
}

// opportunityWeights applies to timing/opportunity-class advice, where when
// matters more than how much.
var opportunityWeights = Weights{
	Completeness: 0.2,
	Visibility:   0.3,
	Timing:       0.4,
	Resource:     0.1,
}

// standardWeights applies to every other category.
var standardWeights = Weights{
	Completeness: 0.3,
	Visibility:   0.3,
	Timing:       0.2,
	Resource:     0.2,
}

// #endregion weights
