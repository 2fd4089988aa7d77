package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sidecoach/internal/advice"
)

//go:embed default_tuning.yaml
var defaultTuning []byte

// #region catalog

// Catalog is the data-driven table of advice producers, evaluated in
// declared order.
type Catalog struct {
	rules  []Rule
	tuning Tuning
}

// Load builds the catalog. path may be empty to use the embedded tuning.
func Load(path string) (*Catalog, error) {
	data := defaultTuning
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tuning %s: %w", path, err)
		}
		data = fileData
	}

	var tuning Tuning
	if err := yaml.Unmarshal(defaultTuning, &tuning); err != nil {
		return nil, fmt.Errorf("parse embedded tuning: %w", err)
	}
	if path != "" {
		// File values overlay the embedded defaults.
		if err := yaml.Unmarshal(data, &tuning); err != nil {
			return nil, fmt.Errorf("parse tuning %s: %w", path, err)
		}
	}

	return &Catalog{rules: defaultRules(), tuning: tuning}, nil
}

// Tuning returns the loaded thresholds.
func (c *Catalog) Tuning() Tuning {
	return c.tuning
}

// #endregion catalog

// #region evaluate

// Evaluate runs every enabled rule against the context, in declared order.
// The intentional-silence rule only speaks when nothing else did.
func (c *Catalog) Evaluate(ctx Context) []Candidate {
	if ctx.Curr == nil {
		return nil
	}

	var out []Candidate
	var silence *Rule
	for i := range c.rules {
		r := &c.rules[i]
		if c.disabled(r.Name) {
			continue
		}
		if r.Silence {
			silence = r
			continue
		}
		fired, delta := r.When(ctx, c.tuning)
		if !fired {
			continue
		}
		out = append(out, c.candidate(r, ctx, delta))
	}

	if len(out) == 0 && silence != nil {
		if fired, delta := silence.When(ctx, c.tuning); fired {
			out = append(out, c.candidate(silence, ctx, delta))
		}
	}
	return out
}

// candidate materializes one advice from a fired rule.
func (c *Catalog) candidate(r *Rule, ctx Context, delta *advice.ResourceDelta) Candidate {
	template := r.Template
	if override, ok := c.tuning.Templates[r.Name]; ok {
		template = override
	}
	adv := advice.New(r.Priority, r.Category, render(template, delta), ctx.Curr.Elapsed)
	adv.Delta = delta
	adv.IntentionalSilence = r.Silence

	cand := Candidate{Advice: adv}
	if r.Window != nil {
		cand.Window = r.Window(c.tuning)
		cand.HasWindow = true
	}
	return cand
}

func (c *Catalog) disabled(name string) bool {
	for _, d := range c.tuning.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

// #endregion evaluate
