package rules

import (
	"os"
	"path/filepath"
	"testing"

	"sidecoach/internal/advice"
	"sidecoach/internal/snapshot"
)

func worth(v float64) *float64 { return &v }

func quietSnapshot(elapsed float64) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Elapsed: elapsed,
		Hero:    &snapshot.HeroState{Health: 900, MaxHealth: 1000, Alive: true},
		Structures: &snapshot.Structures{
			Own:   []snapshot.Structure{{Name: "core", Health: 5000, MaxHealth: 5000, Core: true}},
			Enemy: []snapshot.Structure{{Name: "core", Health: 5000, MaxHealth: 5000, Core: true}},
		},
		OwnWorth:   worth(10000),
		EnemyWorth: worth(10000),
	}
}

func TestLoadEmbeddedDefaults(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tun := cat.Tuning()
	if tun.PushWorthLead != 3000 {
		t.Fatalf("expected push lead 3000, got %.0f", tun.PushWorthLead)
	}
	if tun.RetreatMissingEnemies != 2 {
		t.Fatalf("expected 2 missing enemies, got %d", tun.RetreatMissingEnemies)
	}
	if tun.SpikeWindowSeconds != 45 {
		t.Fatalf("expected 45s spike window, got %.0f", tun.SpikeWindowSeconds)
	}
}

func TestFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("push_worth_lead: 5000\n"), 0o644); err != nil {
		t.Fatalf("write tuning: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tun := cat.Tuning()
	if tun.PushWorthLead != 5000 {
		t.Fatalf("expected overridden lead 5000, got %.0f", tun.PushWorthLead)
	}
	// Unset keys keep their embedded values.
	if tun.FarmRateFloor != 0.2 {
		t.Fatalf("expected default farm floor 0.2, got %.2f", tun.FarmRateFloor)
	}
}

func TestPushWindowAttachesDelta(t *testing.T) {
	cat, _ := Load("")
	snap := quietSnapshot(400)
	snap.OwnWorth = worth(14000) // 4000 ahead of 10000

	cands := cat.Evaluate(Context{Curr: snap})

	if len(cands) != 1 {
		t.Fatalf("expected only the push rule, got %d candidates", len(cands))
	}
	adv := cands[0].Advice
	if adv.Category != advice.CategoryPush || adv.Priority != advice.High {
		t.Fatalf("unexpected advice %s/%s", adv.Category, adv.Priority)
	}
	if adv.Delta == nil || adv.Delta.Amount != 4000 || adv.Delta.Percent != 40 {
		t.Fatalf("expected delta 4000/40%%, got %+v", adv.Delta)
	}
	if adv.Text != "Take a tower. You are 4000 gold ahead." {
		t.Fatalf("template not rendered: %q", adv.Text)
	}
}

func TestSilenceOnlyWhenNothingElseFires(t *testing.T) {
	cat, _ := Load("")

	quiet := cat.Evaluate(Context{Curr: quietSnapshot(400)})
	if len(quiet) != 1 || !quiet[0].Advice.IntentionalSilence {
		t.Fatalf("quiet board should yield the silence advice, got %+v", quiet)
	}

	busy := quietSnapshot(400)
	busy.OwnWorth = worth(14000)
	cands := cat.Evaluate(Context{Curr: busy})
	for _, c := range cands {
		if c.Advice.IntentionalSilence {
			t.Fatal("silence advice must not fire alongside a real call")
		}
	}
}

func TestGameEndingRules(t *testing.T) {
	cat, _ := Load("")

	threatened := quietSnapshot(1500)
	threatened.Structures.Own[0].Health = 1000 // 20% < 30% threat threshold
	cands := cat.Evaluate(Context{Curr: threatened})
	if len(cands) == 0 || cands[0].Advice.Priority != advice.GameEnding || cands[0].Advice.Category != advice.CategoryRetreat {
		t.Fatalf("expected defend-core first, got %+v", cands)
	}

	winning := quietSnapshot(1500)
	winning.Structures.Enemy[0].Health = 1000
	cands = cat.Evaluate(Context{Curr: winning})
	if len(cands) == 0 || cands[0].Advice.Category != advice.CategoryEndgame {
		t.Fatalf("expected end-push, got %+v", cands)
	}
}

func TestRetreatNeedsLowHealthAndMissingEnemies(t *testing.T) {
	cat, _ := Load("")

	snap := quietSnapshot(400)
	snap.Hero.Health = 250 // 25% < 30%
	snap.Enemies = []snapshot.EnemyEntry{
		{ID: "e1", Visible: true}, {ID: "e2"}, {ID: "e3"},
	}

	cands := cat.Evaluate(Context{Curr: snap})
	found := false
	for _, c := range cands {
		if c.Advice.Priority == advice.Critical && c.Advice.Category == advice.CategoryRetreat {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected critical retreat with 2 missing enemies, got %+v", cands)
	}

	// Full vision: no retreat call even while low.
	for i := range snap.Enemies {
		snap.Enemies[i].Visible = true
	}
	cands = cat.Evaluate(Context{Curr: snap})
	for _, c := range cands {
		if c.Advice.Priority == advice.Critical {
			t.Fatal("retreat should need missing enemies, not just low health")
		}
	}
}

func TestSpikeWindowCarriesTuningWindow(t *testing.T) {
	cat, _ := Load("")

	cands := cat.Evaluate(Context{Curr: quietSnapshot(610)})
	var spike *Candidate
	for i := range cands {
		if cands[i].Advice.Category == advice.CategoryTiming {
			spike = &cands[i]
		}
	}
	if spike == nil {
		t.Fatalf("expected spike-window at 610s, got %+v", cands)
	}
	if !spike.HasWindow || spike.Window != 45 {
		t.Fatalf("expected 45s window, got %+v", spike)
	}

	// Outside the window nothing fires.
	cands = cat.Evaluate(Context{Curr: quietSnapshot(700)})
	for _, c := range cands {
		if c.Advice.Category == advice.CategoryTiming {
			t.Fatal("spike window should be closed at 700s")
		}
	}
}

func TestFarmStallNeedsPrevSnapshot(t *testing.T) {
	cat, _ := Load("")

	curr := quietSnapshot(430)
	if cands := cat.Evaluate(Context{Curr: curr}); len(cands) != 1 || !cands[0].Advice.IntentionalSilence {
		t.Fatal("farm stall must not fire without a previous snapshot")
	}

	prev := quietSnapshot(400)
	curr.OwnWorth = worth(10003) // 3 gold in 30s, rate 0.1 < 0.2
	cands := cat.Evaluate(Context{Prev: prev, Curr: curr})
	found := false
	for _, c := range cands {
		if c.Advice.Category == advice.CategoryFarm {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected farm-stall at rate 0.1, got %+v", cands)
	}
}

func TestDisabledAndTemplateOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	tuning := "disabled: [spike-window]\ntemplates:\n  push-window: \"Lead {amount} ({percent}%). Push.\"\n"
	if err := os.WriteFile(path, []byte(tuning), 0o644); err != nil {
		t.Fatalf("write tuning: %v", err)
	}
	cat, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	snap := quietSnapshot(610) // inside the spike window
	snap.OwnWorth = worth(14000)
	cands := cat.Evaluate(Context{Curr: snap})

	for _, c := range cands {
		if c.Advice.Category == advice.CategoryTiming {
			t.Fatal("disabled rule still fired")
		}
	}
	if len(cands) != 1 || cands[0].Advice.Text != "Lead 4000 (40%). Push." {
		t.Fatalf("template override not applied: %+v", cands)
	}
}

func TestEvaluateNilSnapshot(t *testing.T) {
	cat, _ := Load("")
	if cands := cat.Evaluate(Context{}); cands != nil {
		t.Fatalf("expected nil for a nil snapshot, got %+v", cands)
	}
}
