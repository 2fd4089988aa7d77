package pipeline

// #region tick-report

// TickReport summarizes what one snapshot produced.
type TickReport struct {
	Candidates int
	Delivered  []string // softened texts handed to the channel this tick
	Suppressed int
	Queued     int
	Dropped    int
	Graded     int  // compliance gradings applied this tick
	Recovered  bool // a fault resolved to "no advice this tick"
}

// #endregion tick-report
