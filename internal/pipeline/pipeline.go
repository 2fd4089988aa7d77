package pipeline

import (
	"context"
	"log"
	"time"

	"sidecoach/internal/advice"
	"sidecoach/internal/arbiter"
	"sidecoach/internal/confidence"
	"sidecoach/internal/delivery"
	"sidecoach/internal/ledger"
	"sidecoach/internal/limiter"
	"sidecoach/internal/rules"
	"sidecoach/internal/snapshot"
	"sidecoach/internal/trust"
)

// #region config

// Config bundles the pipeline's stage configs.
type Config struct {
	Arbiter arbiter.Config
	Limiter limiter.Config

	// SynchronousDelivery makes delivery block the tick. Only replay and
	// tests set this; live sessions fire and forget.
	SynchronousDelivery bool

	// Clock supplies wall time for the rate limiter. Nil means time.Now.
	Clock func() time.Time
}

// DefaultConfig returns the shipped stage configs.
func DefaultConfig() Config {
	return Config{
		Arbiter: arbiter.DefaultConfig(),
		Limiter: limiter.DefaultConfig(),
	}
}

// #endregion config

// #region pipeline

// Pipeline is the per-tick decision loop. Every mutable structure here is
// owned by the goroutine calling Tick; a multi-session deployment runs one
// Pipeline per session.
type Pipeline struct {
	catalog *rules.Catalog
	arb     *arbiter.Arbiter
	lim     *limiter.Limiter
	cal     *trust.Calibrator
	led     *ledger.Ledger
	store   *ledger.Store // nil disables persistence
	channel delivery.Channel
	clock   func() time.Time
	sync    bool

	sessionID  string
	prev       *snapshot.Snapshot
	tracked    map[string]trackedAdvice
	queuedConf map[string]float64 // confidence of HIGH advice parked in the limiter
}

// trackedAdvice is a candidate awaiting retrospective grading against the
// next snapshot. Issued distinguishes advice the operator actually heard.
type trackedAdvice struct {
	adv    advice.Advice
	conf   float64
	issued bool
}

// New wires a pipeline. store may be nil for in-memory runs.
func New(catalog *rules.Catalog, channel delivery.Channel, store *ledger.Store, config Config) *Pipeline {
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Pipeline{
		catalog:    catalog,
		arb:        arbiter.NewArbiter(config.Arbiter),
		lim:        limiter.NewLimiter(config.Limiter),
		cal:        trust.NewCalibrator(),
		led:        ledger.NewLedger(),
		store:      store,
		channel:    channel,
		clock:      clock,
		sync:       config.SynchronousDelivery,
		tracked:    make(map[string]trackedAdvice),
		queuedConf: make(map[string]float64),
	}
}

// Profile exposes the current trust profile.
func (p *Pipeline) Profile() trust.Profile {
	return p.cal.Profile()
}

// Limiter exposes delivery state for inspection.
func (p *Pipeline) Limiter() *limiter.Limiter {
	return p.lim
}

// #endregion pipeline

// #region session

// StartSession resets all decision state for a fresh session.
func (p *Pipeline) StartSession(sessionID string) {
	p.resetState()
	p.sessionID = sessionID
	if p.store != nil {
		if err := p.store.BeginSession(sessionID, p.clock()); err != nil {
			log.Printf("[PIPE] begin session record: %v", err)
		}
	}
	log.Printf("[PIPE] session %s started", sessionID)
}

// EndSession summarizes the ledger, persists the report, and atomically
// clears every mutable structure. Returns the summary for the caller to
// surface.
func (p *Pipeline) EndSession() ledger.Summary {
	summary := p.led.Summarize()
	if p.store != nil && p.sessionID != "" {
		if err := p.store.EndSession(p.sessionID, p.clock(), summary); err != nil {
			log.Printf("[PIPE] end session record: %v", err)
		}
	}
	for _, rec := range summary.Recommendations {
		log.Printf("[PIPE] session %s: %s", p.sessionID, rec)
	}
	p.resetState()
	return summary
}

func (p *Pipeline) resetState() {
	p.sessionID = ""
	p.prev = nil
	p.tracked = make(map[string]trackedAdvice)
	p.queuedConf = make(map[string]float64)
	p.cal.Reset()
	p.lim.Reset()
	p.led.Reset()
}

// #endregion session

// #region tick

// Tick fully processes one snapshot: grade the prior tick's advice, run
// the rule catalog, score, arbitrate, rate-limit, dispatch, and record.
// A fault anywhere resolves to "no advice this tick", never a crash.
func (p *Pipeline) Tick(snap *snapshot.Snapshot) (report TickReport) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PIPE] tick recovered: %v", r)
			report = TickReport{Recovered: true}
		}
	}()

	if snap == nil {
		return report
	}
	now := p.clock()

	// 1. Retrospective pass: grade what the previous tick put in play.
	report.Graded = p.gradeTracked(snap)

	// 2. Candidate pass: rules → score → arbitrate → limit → dispatch.
	candidates := p.catalog.Evaluate(rules.Context{Prev: p.prev, Curr: snap})
	report.Candidates = len(candidates)
	profile := p.cal.Profile()

	for _, cand := range candidates {
		conf := p.scoreCandidate(cand, snap)
		dec := p.arb.Decide(cand.Advice, conf, profile)
		p.auditDecision(dec)

		if dec.Action != arbiter.ActionDeliver {
			report.Suppressed++
			p.track(cand.Advice, conf.Score, false)
			continue
		}

		switch p.lim.Admit(cand.Advice, dec.Text, now) {
		case limiter.VerdictSend:
			p.dispatch(cand.Advice, dec.Text)
			p.track(cand.Advice, conf.Score, true)
			report.Delivered = append(report.Delivered, dec.Text)
		case limiter.VerdictQueued:
			p.queuedConf[cand.Advice.ID] = conf.Score
			report.Queued++
		case limiter.VerdictDropped:
			report.Dropped++
			p.track(cand.Advice, conf.Score, false)
		}
	}

	// 3. Drain one deferred HIGH advice if spacing allows.
	if d, ok := p.lim.Drain(now); ok {
		conf := p.queuedConf[d.Advice.ID]
		delete(p.queuedConf, d.Advice.ID)
		p.dispatch(d.Advice, d.Text)
		p.track(d.Advice, conf, true)
		report.Delivered = append(report.Delivered, d.Text)
	}

	p.prev = snap
	return report
}

// scoreCandidate applies the timing window when the rule declared one.
func (p *Pipeline) scoreCandidate(cand rules.Candidate, snap *snapshot.Snapshot) confidence.Result {
	if cand.HasWindow {
		return confidence.ScoreWindow(snap, cand.Advice.Category, cand.Window)
	}
	return confidence.Score(snap, cand.Advice.Category)
}

// #endregion tick

// #region grading

// gradeTracked diffs the previous snapshot against the new one for every
// tracked candidate, feeding the calibrator (issued advice only) and the
// ledger (every opportunity).
func (p *Pipeline) gradeTracked(snap *snapshot.Snapshot) int {
	if p.prev == nil || len(p.tracked) == 0 {
		p.tracked = make(map[string]trackedAdvice)
		return 0
	}

	graded := 0
	for _, tr := range p.tracked {
		rec, ok := trust.GradeCompliance(tr.adv, p.prev, snap)
		if !ok {
			continue
		}
		graded++
		if tr.issued {
			p.cal.Observe(rec)
		}
		p.recordOpportunity(tr, rec, snap)
	}
	p.tracked = make(map[string]trackedAdvice)
	return graded
}

// recordOpportunity appends one ledger event per graded opportunity,
// whether or not the advice was issued.
func (p *Pipeline) recordOpportunity(tr trackedAdvice, rec trust.Record, snap *snapshot.Snapshot) {
	category, ok := eventCategory(tr.adv.Category)
	if !ok {
		return
	}

	outcome := ledger.OutcomeUnknown
	switch rec.Grade {
	case trust.GradeFull, trust.GradePartial:
		outcome = ledger.OutcomeActedOn
	case trust.GradeNone:
		outcome = ledger.OutcomeMissed
	}

	enemyTotal := 0.0
	if snap.EnemyWorth != nil {
		enemyTotal = *snap.EnemyWorth
	}
	event := ledger.Event{
		Category:    category,
		Confidence:  tr.conf,
		Weight:      ledger.ImportanceWeight(tr.conf, tr.adv.DeltaMagnitude(), enemyTotal),
		Outcome:     outcome,
		SessionTime: tr.adv.SessionTime,
	}
	p.led.Append(event)
	if p.store != nil && p.sessionID != "" {
		if err := p.store.AppendEvent(p.sessionID, event); err != nil {
			log.Printf("[LEDGER] append event: %v", err)
		}
	}
}

// eventCategory maps advice categories onto ledger opportunity classes.
// Informational advice is not an opportunity.
func eventCategory(c advice.Category) (ledger.EventCategory, bool) {
	switch c {
	case advice.CategoryPush:
		return ledger.EventPushOpportunity, true
	case advice.CategoryRetreat:
		return ledger.EventDisengageOpportunity, true
	case advice.CategoryFarm:
		return ledger.EventFarmOpportunity, true
	case advice.CategoryEndgame:
		return ledger.EventEndCondition, true
	case advice.CategoryTiming:
		return ledger.EventTurningPoint, true
	}
	return "", false
}

func (p *Pipeline) track(adv advice.Advice, conf float64, issued bool) {
	p.tracked[adv.ID] = trackedAdvice{adv: adv, conf: conf, issued: issued}
}

// #endregion grading

// #region dispatch

// dispatch hands text to the channel. The async path observes the result
// for audit only; the decision loop never waits on it.
func (p *Pipeline) dispatch(adv advice.Advice, text string) {
	sessionID := p.sessionID
	onResult := func(delivered bool, err error) {
		if err != nil {
			log.Printf("[PIPE] delivery failed: %v", err)
		}
		if p.store == nil || sessionID == "" {
			return
		}
		logErr := p.store.LogDelivery(ledger.DeliveryEntry{
			SessionID: sessionID,
			AdviceID:  adv.ID,
			Category:  string(adv.Category),
			Priority:  adv.Priority.String(),
			Text:      text,
			Delivered: delivered && err == nil,
		})
		if logErr != nil {
			log.Printf("[PIPE] delivery record: %v", logErr)
		}
	}

	if p.sync {
		delivered, err := p.channel.Deliver(context.Background(), text)
		onResult(delivered, err)
		return
	}
	delivery.Dispatch(p.channel, text, onResult)
}

// auditDecision writes the arbitration outcome to the audit log.
func (p *Pipeline) auditDecision(dec arbiter.Decision) {
	log.Printf("[ARB] %s %s/%s confidence=%.2f: %s",
		dec.Action, dec.Advice.Priority, dec.Advice.Category, dec.Confidence.Score, dec.Reason)
	if p.store == nil || p.sessionID == "" {
		return
	}
	err := p.store.LogDecision(ledger.DecisionEntry{
		SessionID:  p.sessionID,
		AdviceID:   dec.Advice.ID,
		Category:   string(dec.Advice.Category),
		Priority:   dec.Advice.Priority.String(),
		Confidence: dec.Confidence.Score,
		Action:     string(dec.Action),
		Reason:     dec.Reason,
	})
	if err != nil {
		log.Printf("[ARB] audit record: %v", err)
	}
}

// #endregion dispatch
