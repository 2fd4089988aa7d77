package limiter

import (
	"fmt"
	"testing"
	"time"

	"sidecoach/internal/advice"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return base.Add(time.Duration(seconds) * time.Second)
}

func TestGameEndingIgnoresSpacing(t *testing.T) {
	l := NewLimiter(DefaultConfig())

	for i := 0; i < 3; i++ {
		adv := advice.New(advice.GameEnding, advice.CategoryEndgame, "End it.", 0)
		if v := l.Admit(adv, adv.Text, at(i)); v != VerdictSend {
			t.Fatalf("game-ending at t=%ds: expected send, got %s", i, v)
		}
	}
}

func TestCriticalUsesOwnCooldown(t *testing.T) {
	l := NewLimiter(DefaultConfig())

	first := advice.New(advice.Critical, advice.CategoryRetreat, "Back off.", 0)
	if v := l.Admit(first, first.Text, at(0)); v != VerdictSend {
		t.Fatalf("first critical: expected send, got %s", v)
	}

	// 5s later: inside the 10s critical cooldown.
	second := advice.New(advice.Critical, advice.CategoryRetreat, "Back off.", 5)
	if v := l.Admit(second, second.Text, at(5)); v != VerdictDropped {
		t.Fatalf("critical at 5s: expected dropped, got %s", v)
	}

	// 12s later: cooldown cleared. The shared clock does not block criticals.
	third := advice.New(advice.Critical, advice.CategoryRetreat, "Back off.", 12)
	if v := l.Admit(third, third.Text, at(12)); v != VerdictSend {
		t.Fatalf("critical at 12s: expected send, got %s", v)
	}
}

func TestHighQueuesInsideWindow(t *testing.T) {
	l := NewLimiter(DefaultConfig())

	first := advice.New(advice.High, advice.CategoryPush, "Push top.", 0)
	if v := l.Admit(first, first.Text, at(0)); v != VerdictSend {
		t.Fatalf("first high: expected send, got %s", v)
	}

	second := advice.New(advice.High, advice.CategoryPush, "Push mid.", 10)
	if v := l.Admit(second, second.Text, at(10)); v != VerdictQueued {
		t.Fatalf("high at 10s: expected queued, got %s", v)
	}
	if l.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", l.Pending())
	}

	// Still inside the 30s window.
	if _, ok := l.Drain(at(20)); ok {
		t.Fatal("drain before spacing should release nothing")
	}

	d, ok := l.Drain(at(31))
	if !ok {
		t.Fatal("drain after spacing should release the deferred high")
	}
	if d.Advice.ID != second.ID {
		t.Fatal("drained the wrong advice")
	}
	if l.Pending() != 0 {
		t.Fatalf("expected empty buffer after drain, got %d", l.Pending())
	}
}

func TestDrainReleasesOldestFirst(t *testing.T) {
	l := NewLimiter(DefaultConfig())

	blocker := advice.New(advice.High, advice.CategoryPush, "first", 0)
	l.Admit(blocker, blocker.Text, at(0))

	a := advice.New(advice.High, advice.CategoryPush, "second", 5)
	b := advice.New(advice.High, advice.CategoryPush, "third", 6)
	l.Admit(a, a.Text, at(5))
	l.Admit(b, b.Text, at(6))

	d, ok := l.Drain(at(31))
	if !ok || d.Advice.ID != a.ID {
		t.Fatal("expected oldest deferred advice first")
	}
	// The drain reset the shared clock; the next one must wait another window.
	if _, ok := l.Drain(at(32)); ok {
		t.Fatal("second drain inside the new window should release nothing")
	}
	d, ok = l.Drain(at(62))
	if !ok || d.Advice.ID != b.ID {
		t.Fatal("expected remaining deferred advice after the next window")
	}
}

func TestPendingCapDropsOverflow(t *testing.T) {
	cfg := DefaultConfig()
	l := NewLimiter(cfg)

	blocker := advice.New(advice.High, advice.CategoryPush, "blocker", 0)
	l.Admit(blocker, blocker.Text, at(0))

	for i := 0; i < cfg.PendingCap; i++ {
		adv := advice.New(advice.High, advice.CategoryPush, fmt.Sprintf("queued %d", i), 1)
		if v := l.Admit(adv, adv.Text, at(1)); v != VerdictQueued {
			t.Fatalf("fill %d: expected queued, got %s", i, v)
		}
	}

	over := advice.New(advice.High, advice.CategoryPush, "overflow", 2)
	if v := l.Admit(over, over.Text, at(2)); v != VerdictDropped {
		t.Fatalf("overflow: expected dropped, got %s", v)
	}
	if l.DroppedFull() != 1 {
		t.Fatalf("expected 1 buffer drop, got %d", l.DroppedFull())
	}
}

func TestMediumAndLowDropInsteadOfQueue(t *testing.T) {
	l := NewLimiter(DefaultConfig())

	blocker := advice.New(advice.High, advice.CategoryPush, "blocker", 0)
	l.Admit(blocker, blocker.Text, at(0))

	medium := advice.New(advice.Medium, advice.CategoryFarm, "farm", 30)
	if v := l.Admit(medium, medium.Text, at(30)); v != VerdictDropped {
		t.Fatalf("medium at 30s: expected dropped, got %s", v)
	}
	low := advice.New(advice.Low, advice.CategoryInfo, "info", 100)
	if v := l.Admit(low, low.Text, at(100)); v != VerdictDropped {
		t.Fatalf("low at 100s: expected dropped, got %s", v)
	}
	if l.Pending() != 0 {
		t.Fatalf("medium/low must never queue, got %d pending", l.Pending())
	}

	// Past both windows the classes send again.
	if v := l.Admit(medium, medium.Text, at(61)); v != VerdictSend {
		t.Fatalf("medium at 61s: expected send, got %s", v)
	}
	if v := l.Admit(low, low.Text, at(200)); v != VerdictSend {
		t.Fatalf("low at 200s (139s after last send): expected send, got %s", v)
	}
}

func TestHistoryCapAndFind(t *testing.T) {
	cfg := DefaultConfig()
	l := NewLimiter(cfg)

	var last advice.Advice
	for i := 0; i < cfg.HistoryCap+10; i++ {
		last = advice.New(advice.GameEnding, advice.CategoryEndgame, "End it.", float64(i))
		l.Admit(last, last.Text, at(i))
	}

	if len(l.History()) != cfg.HistoryCap {
		t.Fatalf("expected history capped at %d, got %d", cfg.HistoryCap, len(l.History()))
	}
	if _, ok := l.Find(last.ID); !ok {
		t.Fatal("most recent delivery should be findable")
	}
	if _, ok := l.Find("not-an-id"); ok {
		t.Fatal("unknown ID should not be found")
	}
}

func TestResetClearsEverything(t *testing.T) {
	l := NewLimiter(DefaultConfig())

	high := advice.New(advice.High, advice.CategoryPush, "push", 0)
	l.Admit(high, high.Text, at(0))
	deferred := advice.New(advice.High, advice.CategoryPush, "push again", 1)
	l.Admit(deferred, deferred.Text, at(1))

	l.Reset()

	if l.Pending() != 0 || len(l.History()) != 0 {
		t.Fatal("reset should clear pending and history")
	}
	// Clocks cleared: an immediate send is allowed again.
	next := advice.New(advice.High, advice.CategoryPush, "fresh", 2)
	if v := l.Admit(next, next.Text, at(2)); v != VerdictSend {
		t.Fatalf("post-reset high: expected send, got %s", v)
	}
}
