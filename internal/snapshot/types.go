package snapshot

// #region snapshot

// Snapshot is one timestamped, read-only observation of session state.
// Producers post these at an irregular cadence; any section pointer may be
// nil when the producer could not populate it, and consumers must treat a
// missing section as uncertainty, never as an error.
type Snapshot struct {
	SessionID string  `json:"session_id"`
	Elapsed   float64 `json:"elapsed_seconds"`

	Hero       *HeroState   `json:"hero,omitempty"`
	Allies     *Roster      `json:"allies,omitempty"`
	Enemies    []EnemyEntry `json:"enemies,omitempty"`
	Structures *Structures  `json:"structures,omitempty"`
	Inventory  *Inventory   `json:"inventory,omitempty"`
	Abilities  *Abilities   `json:"abilities,omitempty"`

	// Aggregate resource totals per side. Nil when the producer has no
	// read on that side.
	OwnWorth   *float64 `json:"own_worth,omitempty"`
	EnemyWorth *float64 `json:"enemy_worth,omitempty"`

	// Deaths is the operator's cumulative death count.
	Deaths int `json:"deaths"`
}

// #endregion snapshot

// #region sections

// HeroState is the primary actor's vital state.
type HeroState struct {
	Name      string  `json:"name"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
	Alive     bool    `json:"alive"`
}

// HealthFraction returns health as a fraction of max, 0 when max is unknown.
func (h *HeroState) HealthFraction() float64 {
	if h == nil || h.MaxHealth <= 0 {
		return 0
	}
	return h.Health / h.MaxHealth
}

// Roster lists the teammates currently visible to the producer.
type Roster struct {
	Expected int      `json:"expected"`
	Members  []string `json:"members"`
}

// EnemyEntry is one opposing entity as currently known.
type EnemyEntry struct {
	ID          string   `json:"id"`
	Visible     bool     `json:"visible"`
	HasPosition bool     `json:"has_position"`
	Worth       *float64 `json:"worth,omitempty"`
}

// Structures holds both sides' tracked structures.
type Structures struct {
	Own   []Structure `json:"own,omitempty"`
	Enemy []Structure `json:"enemy,omitempty"`
}

// Structure is a single tracked objective. Core marks the end-condition
// target; destroying the opposing core ends the session.
type Structure struct {
	Name      string  `json:"name"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
	Core      bool    `json:"core,omitempty"`
}

// HealthFraction returns health as a fraction of max, 0 when max is unknown.
func (s Structure) HealthFraction() float64 {
	if s.MaxHealth <= 0 {
		return 0
	}
	return s.Health / s.MaxHealth
}

// Standing reports whether the structure is still up.
func (s Structure) Standing() bool {
	return s.Health > 0
}

// Inventory is the operator's item state. Contents are opaque to the
// pipeline; only presence matters for completeness scoring.
type Inventory struct {
	Items []string `json:"items"`
}

// Abilities is the operator's ability/cooldown state. Contents are opaque
// to the pipeline; only presence matters for completeness scoring.
type Abilities struct {
	Ready    []string `json:"ready"`
	Cooldown []string `json:"cooldown"`
}

// #endregion sections
