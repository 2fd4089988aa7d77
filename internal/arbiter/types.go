package arbiter

import (
	"sidecoach/internal/advice"
	"sidecoach/internal/confidence"
)

// #region action

// Action is the arbitration verdict.
type Action string

const (
	ActionDeliver  Action = "deliver"
	ActionSuppress Action = "suppress"
)

// #endregion action

// #region decision

// Decision is the output of arbitration: either an enriched deliverable
// text or a suppression with its reason. The advice itself is carried
// unmodified.
type Decision struct {
	Action     Action
	Reason     string
	Text       string // softened delivery text, empty when suppressed
	Advice     advice.Advice
	Confidence confidence.Result
}

// #endregion decision
