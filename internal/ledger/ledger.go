package ledger

import (
	"fmt"
	"time"
)

// #region events

// EventCategory classifies an observed opportunity.
type EventCategory string

const (
	EventPushOpportunity      EventCategory = "push_opportunity"
	EventDisengageOpportunity EventCategory = "disengage_opportunity"
	EventFarmOpportunity      EventCategory = "farm_opportunity"
	EventEndCondition         EventCategory = "end_condition"
	EventTurningPoint         EventCategory = "turning_point"
)

// EventOutcome records whether the opportunity was taken.
type EventOutcome string

const (
	OutcomeActedOn EventOutcome = "acted_on"
	OutcomeMissed  EventOutcome = "missed"
	OutcomeUnknown EventOutcome = "unknown"
)

// Event is one opportunity observation, whether or not advice was issued
// for it. Append-only for the session.
type Event struct {
	Category    EventCategory
	Confidence  float64
	Weight      float64
	Outcome     EventOutcome
	SessionTime float64
	CreatedAt   time.Time
}

// ImportanceWeight derives an event's weight from its confidence, boosted
// when the resource swing is a meaningful share of the opposing total.
func ImportanceWeight(conf, deltaMagnitude, enemyTotal float64) float64 {
	w := conf
	if enemyTotal > 0 {
		share := deltaMagnitude / enemyTotal
		switch {
		case share > 0.2:
			w += 0.2
		case share > 0.1:
			w += 0.1
		}
	}
	if w > 1 {
		return 1
	}
	if w < 0 {
		return 0
	}
	return w
}

// #endregion events

// #region ledger

// Ledger accumulates opportunity events for one session.
type Ledger struct {
	events []Event
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append records one event.
func (l *Ledger) Append(e Event) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	l.events = append(l.events, e)
}

// Events returns all events recorded this session.
func (l *Ledger) Events() []Event {
	return l.events
}

// Reset discards the session's events.
func (l *Ledger) Reset() {
	l.events = nil
}

// #endregion ledger

// #region summary

// Summary is the post-session report.
type Summary struct {
	TotalEvents          int
	HighConfidenceActed  int // confidence ≥ 0.7, acted on
	HighConfidenceMissed int // confidence ≥ 0.7, missed
	LowConfidenceMissed  int // confidence < 0.5, missed
	Recommendations      []string
}

// Summarize counts confidence-bucketed outcomes and emits templated
// recommendations driven purely by the counts.
func (l *Ledger) Summarize() Summary {
	s := Summary{TotalEvents: len(l.events)}
	for _, e := range l.events {
		switch {
		case e.Outcome == OutcomeActedOn && e.Confidence >= 0.7:
			s.HighConfidenceActed++
		case e.Outcome == OutcomeMissed && e.Confidence >= 0.7:
			s.HighConfidenceMissed++
		case e.Outcome == OutcomeMissed && e.Confidence < 0.5:
			s.LowConfidenceMissed++
		}
	}
	s.Recommendations = recommendations(s)
	return s
}

// recommendations templates advice from the counts, nothing free-form.
func recommendations(s Summary) []string {
	var out []string
	if s.HighConfidenceMissed > 0 && s.HighConfidenceMissed >= s.HighConfidenceActed {
		out = append(out, fmt.Sprintf(
			"%d high-confidence opportunities went unanswered; trust the clear calls sooner.",
			s.HighConfidenceMissed))
	}
	if s.HighConfidenceActed > 0 {
		out = append(out, fmt.Sprintf(
			"Converted %d high-confidence opportunities; keep taking those windows.",
			s.HighConfidenceActed))
	}
	if s.LowConfidenceMissed > 0 && s.HighConfidenceMissed == 0 {
		out = append(out, fmt.Sprintf(
			"All %d missed calls were low-confidence reads; no behavior change indicated.",
			s.LowConfidenceMissed))
	}
	if len(out) == 0 {
		out = append(out, "Not enough opportunity data this session to recommend changes.")
	}
	return out
}

// #endregion summary
