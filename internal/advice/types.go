package advice

import (
	"time"

	"github.com/google/uuid"
)

// #region priority

// Priority orders advice classes. The order is total and fixed; GameEnding
// is the highest and is exempt from every suppression and queuing rule.
type Priority int

const (
	Low Priority = iota
	Medium
	High
	Critical
	GameEnding
)

// String returns the canonical name of the priority class.
func (p Priority) String() string {
	switch p {
	case GameEnding:
		return "game_ending"
	case Critical:
		return "critical"
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	}
	return "unknown"
}

// #endregion priority

// #region category

// Category tags advice with the behavior it recommends. It is a closed set:
// compliance detectors switch exhaustively over it, so adding a category is
// a compile-visible change.
type Category string

const (
	CategoryPush    Category = "push"    // take an objective
	CategoryRetreat Category = "retreat" // disengage
	CategoryFarm    Category = "farm"    // resource accumulation
	CategoryEndgame Category = "endgame" // end-condition target
	CategoryTiming  Category = "timing"  // timing/opportunity window
	CategoryInfo    Category = "info"    // informational, includes intentional silence
)

// #endregion category

// #region advice

// ResourceDelta is optional numeric context attached by a rule: the raw
// resource difference and the same difference as a percentage of the
// opposing total.
type ResourceDelta struct {
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

// Advice is a candidate recommendation from a rule producer. Immutable
// once created; the pipeline annotates it with confidence data in separate
// structures rather than mutating it.
type Advice struct {
	ID                 string         `json:"id"`
	Priority           Priority       `json:"priority"`
	Category           Category       `json:"category"`
	Text               string         `json:"text"`
	Delta              *ResourceDelta `json:"delta,omitempty"`
	IntentionalSilence bool           `json:"intentional_silence,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	SessionTime        float64        `json:"session_time"`
}

// New builds a candidate advice with a fresh ID and creation timestamp.
// sessionTime is the session clock (seconds) at creation.
func New(priority Priority, category Category, text string, sessionTime float64) Advice {
	return Advice{
		ID:          uuid.New().String(),
		Priority:    priority,
		Category:    category,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
		SessionTime: sessionTime,
	}
}

// DeltaMagnitude returns the absolute resource delta, 0 when none attached.
func (a Advice) DeltaMagnitude() float64 {
	if a.Delta == nil {
		return 0
	}
	if a.Delta.Amount < 0 {
		return -a.Delta.Amount
	}
	return a.Delta.Amount
}

// #endregion advice
