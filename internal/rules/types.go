package rules

import (
	"strconv"
	"strings"

	"sidecoach/internal/advice"
	"sidecoach/internal/snapshot"
)

// #region rule

// Context is what a predicate sees: the previous and current snapshots.
// Prev may be nil on the first tick of a session.
type Context struct {
	Prev *snapshot.Snapshot
	Curr *snapshot.Snapshot
}

// Rule is one (predicate, priority, message-template) tuple. Rules are
// evaluated in declared order; the arbitration core never looks inside
// them.
type Rule struct {
	Name     string
	Category advice.Category
	Priority advice.Priority
	Template string
	Silence  bool // marks intentional-silence advice

	// Window reports the timing-window width in seconds, nil when the
	// rule has no window.
	Window func(t Tuning) float64

	// When reports whether the rule fires and optionally attaches the
	// resource delta backing the call.
	When func(ctx Context, t Tuning) (bool, *advice.ResourceDelta)
}

// Candidate pairs produced advice with the rule's timing window so the
// scorer can use it.
type Candidate struct {
	Advice    advice.Advice
	Window    float64
	HasWindow bool
}

// #endregion rule

// #region tuning

// Tuning holds the catalog's numeric thresholds and template overrides,
// loadable from YAML so the catalog is swappable without touching code.
type Tuning struct {
	PushWorthLead         float64           `yaml:"push_worth_lead"`
	RetreatHealthFraction float64           `yaml:"retreat_health_fraction"`
	RetreatMissingEnemies int               `yaml:"retreat_missing_enemies"`
	FarmRateFloor         float64           `yaml:"farm_rate_floor"`
	CoreThreatFraction    float64           `yaml:"core_threat_fraction"`
	SpikeStartSeconds     float64           `yaml:"spike_start_seconds"`
	SpikeWindowSeconds    float64           `yaml:"spike_window_seconds"`
	Disabled              []string          `yaml:"disabled"`
	Templates             map[string]string `yaml:"templates"`
}

// #endregion tuning

// #region render

// render fills the {amount} and {percent} tokens in a template. Tokens
// keep user-supplied templates printf-safe.
func render(template string, delta *advice.ResourceDelta) string {
	if delta == nil {
		return template
	}
	out := strings.ReplaceAll(template, "{amount}", strconv.FormatFloat(delta.Amount, 'f', 0, 64))
	out = strings.ReplaceAll(out, "{percent}", strconv.FormatFloat(delta.Percent, 'f', 0, 64))
	return out
}

// #endregion render
