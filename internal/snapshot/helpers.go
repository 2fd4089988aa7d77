package snapshot

// #region sections

// CoreSections is the number of snapshot sections completeness scoring
// expects: hero, allies, structures, inventory, abilities.
const CoreSections = 5

// PresentSections counts how many of the core sections are populated.
func (s *Snapshot) PresentSections() int {
	n := 0
	if s.Hero != nil {
		n++
	}
	if s.Allies != nil {
		n++
	}
	if s.Structures != nil {
		n++
	}
	if s.Inventory != nil {
		n++
	}
	if s.Abilities != nil {
		n++
	}
	return n
}

// TeammateFraction returns the fraction of expected teammates present in
// the roster, 1 when no expectation is recorded.
func (s *Snapshot) TeammateFraction() float64 {
	if s.Allies == nil || s.Allies.Expected <= 0 {
		return 1
	}
	frac := float64(len(s.Allies.Members)) / float64(s.Allies.Expected)
	if frac > 1 {
		return 1
	}
	return frac
}

// #endregion sections

// #region enemies

// VisibleEnemies counts opposing entities currently observable.
func (s *Snapshot) VisibleEnemies() int {
	n := 0
	for _, e := range s.Enemies {
		if e.Visible {
			n++
		}
	}
	return n
}

// MissingEnemies counts opposing entities unaccounted for.
func (s *Snapshot) MissingEnemies() int {
	return len(s.Enemies) - s.VisibleEnemies()
}

// AnyEnemyPosition reports whether positional data exists for any
// opposing entity.
func (s *Snapshot) AnyEnemyPosition() bool {
	for _, e := range s.Enemies {
		if e.HasPosition {
			return true
		}
	}
	return false
}

// EnemyWorthFraction returns the fraction of the opposing roster with a
// known resource value, 0 when the roster is empty.
func (s *Snapshot) EnemyWorthFraction() float64 {
	if len(s.Enemies) == 0 {
		return 0
	}
	known := 0
	for _, e := range s.Enemies {
		if e.Worth != nil {
			known++
		}
	}
	return float64(known) / float64(len(s.Enemies))
}

// #endregion enemies

// #region structures

// EnemyStanding counts opposing structures still up.
func (s *Snapshot) EnemyStanding() int {
	if s.Structures == nil {
		return 0
	}
	n := 0
	for _, st := range s.Structures.Enemy {
		if st.Standing() {
			n++
		}
	}
	return n
}

// EnemyCore returns the opposing end-condition structure, nil when untracked.
func (s *Snapshot) EnemyCore() *Structure {
	if s.Structures == nil {
		return nil
	}
	for i := range s.Structures.Enemy {
		if s.Structures.Enemy[i].Core {
			return &s.Structures.Enemy[i]
		}
	}
	return nil
}

// OwnCore returns the operator side's end-condition structure, nil when untracked.
func (s *Snapshot) OwnCore() *Structure {
	if s.Structures == nil {
		return nil
	}
	for i := range s.Structures.Own {
		if s.Structures.Own[i].Core {
			return &s.Structures.Own[i]
		}
	}
	return nil
}

// #endregion structures
