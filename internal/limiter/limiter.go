package limiter

import (
	"log"
	"time"

	"sidecoach/internal/advice"
)

// #region config

// Config holds the per-class spacing rules.
type Config struct {
	CriticalCooldown time.Duration // tracked on its own clock
	HighSpacing      time.Duration
	MediumSpacing    time.Duration
	LowSpacing       time.Duration
	PendingCap       int // HIGH deferral buffer size
	HistoryCap       int // delivered-advice audit window
}

// DefaultConfig returns the shipped spacing table. The critical cooldown
// is the rate-limit-table value; deployments can widen it via config.
func DefaultConfig() Config {
	return Config{
		CriticalCooldown: 10 * time.Second,
		HighSpacing:      30 * time.Second,
		MediumSpacing:    60 * time.Second,
		LowSpacing:       120 * time.Second,
		PendingCap:       8,
		HistoryCap:       50,
	}
}

// #endregion config

// #region types

// Verdict is the limiter's answer for one admitted advice.
type Verdict string

const (
	VerdictSend    Verdict = "send"
	VerdictQueued  Verdict = "queued"
	VerdictDropped Verdict = "dropped"
)

// Delivered is one entry in the delivery history.
type Delivered struct {
	Advice advice.Advice
	Text   string
	At     time.Time
}

// #endregion types

// #region limiter

// Limiter enforces minimum spacing between outbound messages. All priority
// classes contend for one shared last-delivered clock; only CRITICAL keeps
// an independent cooldown on top of it. Owned by the pipeline goroutine,
// so no locking.
type Limiter struct {
	config        Config
	lastDelivered time.Time
	lastCritical  time.Time
	pending       []Delivered
	history       []Delivered
	droppedFull   int
}

// NewLimiter creates a limiter with the given spacing config.
func NewLimiter(config Config) *Limiter {
	return &Limiter{config: config}
}

// Admit decides whether advice already cleared by the arbitrator may go
// out now. HIGH advice inside its window is queued; MEDIUM and LOW are
// dropped, bounded attention is the goal, not eventual delivery.
func (l *Limiter) Admit(adv advice.Advice, text string, now time.Time) Verdict {
	switch adv.Priority {
	case advice.GameEnding:
		l.record(adv, text, now)
		return VerdictSend

	case advice.Critical:
		if !l.lastCritical.IsZero() && now.Sub(l.lastCritical) < l.config.CriticalCooldown {
			return VerdictDropped
		}
		l.lastCritical = now
		l.record(adv, text, now)
		return VerdictSend

	case advice.High:
		if l.spacingOK(now, l.config.HighSpacing) {
			l.record(adv, text, now)
			return VerdictSend
		}
		if len(l.pending) >= l.config.PendingCap {
			l.droppedFull++
			log.Printf("[LIMIT] pending buffer full, dropping high advice %s", adv.ID)
			return VerdictDropped
		}
		l.pending = append(l.pending, Delivered{Advice: adv, Text: text})
		return VerdictQueued

	case advice.Medium:
		if l.spacingOK(now, l.config.MediumSpacing) {
			l.record(adv, text, now)
			return VerdictSend
		}
		return VerdictDropped

	default:
		if l.spacingOK(now, l.config.LowSpacing) {
			l.record(adv, text, now)
			return VerdictSend
		}
		return VerdictDropped
	}
}

// Drain releases the oldest deferred HIGH advice once spacing allows.
// Called once per tick; returns ok=false when nothing is releasable.
func (l *Limiter) Drain(now time.Time) (Delivered, bool) {
	if len(l.pending) == 0 || !l.spacingOK(now, l.config.HighSpacing) {
		return Delivered{}, false
	}
	d := l.pending[0]
	l.pending = l.pending[1:]
	l.record(d.Advice, d.Text, now)
	d.At = now
	return d, true
}

// #endregion limiter

// #region accessors

// History returns delivered advice, oldest first, capped by config.
func (l *Limiter) History() []Delivered {
	return l.history
}

// Find locates a delivered advice by ID for compliance grading.
func (l *Limiter) Find(adviceID string) (Delivered, bool) {
	for _, d := range l.history {
		if d.Advice.ID == adviceID {
			return d, true
		}
	}
	return Delivered{}, false
}

// Pending returns how many HIGH advice are deferred.
func (l *Limiter) Pending() int {
	return len(l.pending)
}

// DroppedFull returns how many HIGH advice were lost to a full buffer.
func (l *Limiter) DroppedFull() int {
	return l.droppedFull
}

// Reset clears clocks, buffer, and history at a session boundary.
func (l *Limiter) Reset() {
	l.lastDelivered = time.Time{}
	l.lastCritical = time.Time{}
	l.pending = nil
	l.history = nil
	l.droppedFull = 0
}

// #endregion accessors

// #region helpers

func (l *Limiter) spacingOK(now time.Time, spacing time.Duration) bool {
	return l.lastDelivered.IsZero() || now.Sub(l.lastDelivered) >= spacing
}

func (l *Limiter) record(adv advice.Advice, text string, now time.Time) {
	l.lastDelivered = now
	l.history = append(l.history, Delivered{Advice: adv, Text: text, At: now})
	if len(l.history) > l.config.HistoryCap {
		l.history = l.history[len(l.history)-l.config.HistoryCap:]
	}
}

// #endregion helpers
