package bzgate

import (
	"context"
	"strings"
	"testing"
)

func mustGuard(t *testing.T, fn func(GuardContext) bool, params ...GuardParam) *Guard {
	t.Helper()
	g, err := NewGuard(fn, params...)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	return g
}

func newTestEngine(t *testing.T, tracker *fakeTracker, productVersion string, looseFields ...string) (*DecisionEngine, *BugCache) {
	t.Helper()
	version, err := ParseLooseVersion(productVersion)
	if err != nil {
		t.Fatalf("ParseLooseVersion(%q): %v", productVersion, err)
	}
	return NewDecisionEngine(tracker, version), NewBugCache(tracker, looseFields)
}

func TestDecideSkipsWhenAllBugsOpen(t *testing.T) {
	tracker := newFakeTracker()
	engine, cache := newTestEngine(t, tracker, "1.6")

	tests := []struct {
		name string
		ids  []int
	}{
		{"single NEW bug", []int{1}},
		{"two NEW bugs", []int{1, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var refs []Ref
			for _, id := range tt.ids {
				refs = append(refs, Ref{ID: id})
			}
			set := newBugSet(cache, refs)
			d, err := engine.Decide(context.Background(), set, nil, nil)
			if err != nil {
				t.Fatalf("Decide: %v", err)
			}
			if d.Kind != DecisionSkip {
				t.Fatalf("Kind = %s, want skip", d.Kind)
			}
			for _, id := range tt.ids {
				if !strings.Contains(d.Reason, tracker.ShowBugURL(id)) {
					t.Errorf("reason %q missing URL for bug %d", d.Reason, id)
				}
			}
			if !strings.Contains(d.Reason, "NEW") {
				t.Errorf("reason %q missing bug status", d.Reason)
			}
		})
	}
}

func TestDecideRunsWhenAnyBugProgressed(t *testing.T) {
	tracker := newFakeTracker()
	engine, cache := newTestEngine(t, tracker, "1.6")

	// Bug 1 is NEW, bug 2 is CLOSED: one progressed bug unblocks the test.
	set := newBugSet(cache, []Ref{{ID: 1}, {ID: 2}})
	d, err := engine.Decide(context.Background(), set, nil, nil)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != DecisionRun {
		t.Errorf("Kind = %s, want run", d.Kind)
	}
}

func TestDecideEmptySetRuns(t *testing.T) {
	tracker := newFakeTracker()
	engine, cache := newTestEngine(t, tracker, "1.6")

	set := newBugSet(cache, nil)
	alwaysSkip := mustGuard(t, func(GuardContext) bool { return true })
	d, err := engine.Decide(context.Background(), set, alwaysSkip, nil)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != DecisionRun {
		t.Errorf("Kind = %s, want run for empty set", d.Kind)
	}
}

func TestDecideSkipGuardShortCircuits(t *testing.T) {
	tracker := newFakeTracker()
	engine, cache := newTestEngine(t, tracker, "1.6")

	evals := 0
	guard := mustGuard(t, func(ctx GuardContext) bool {
		evals++
		return ctx.Bug.Status == "CLOSED"
	}, ParamBug)

	// Ids resolve in ascending order: 2 (CLOSED) fires before 3 is seen.
	set := newBugSet(cache, []Ref{{ID: 3}, {ID: 2}})
	d, err := engine.Decide(context.Background(), set, guard, nil)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != DecisionSkip {
		t.Fatalf("Kind = %s, want skip", d.Kind)
	}
	if d.Reason != "skipped due to a guard condition" {
		t.Errorf("Reason = %q, want the generic guard reason", d.Reason)
	}
	if evals != 1 {
		t.Errorf("guard evaluated %d times, want 1 (short-circuit)", evals)
	}
}

func TestDecideSkipGuardNeverTrue(t *testing.T) {
	tracker := newFakeTracker()
	engine, cache := newTestEngine(t, tracker, "1.6")

	guard := mustGuard(t, func(GuardContext) bool { return false })
	set := newBugSet(cache, []Ref{{ID: 2}})
	d, err := engine.Decide(context.Background(), set, guard, nil)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != DecisionRun {
		t.Errorf("Kind = %s, want run", d.Kind)
	}
}

func TestDecideXFailAttributesContributingBugs(t *testing.T) {
	tracker := newFakeTracker()
	engine, cache := newTestEngine(t, tracker, "1.6")

	guard := mustGuard(t, func(ctx GuardContext) bool {
		return ctx.Bug.ID == 3
	}, ParamBug)

	set := newBugSet(cache, []Ref{{ID: 2}, {ID: 3}})
	d, err := engine.Decide(context.Background(), set, nil, guard)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != DecisionExpectedFailure {
		t.Fatalf("Kind = %s, want xfail", d.Kind)
	}
	if len(d.BugIDs) != 1 || d.BugIDs[0] != 3 {
		t.Errorf("BugIDs = %v, want [3]", d.BugIDs)
	}
	if !strings.Contains(d.Reason, tracker.ShowBugURL(3)) {
		t.Errorf("reason %q missing URL for bug 3", d.Reason)
	}
	if strings.Contains(d.Reason, tracker.ShowBugURL(2)) {
		t.Errorf("reason %q attributes bug 2, which did not contribute", d.Reason)
	}
}

func TestDecideXFailCollectsAllBugs(t *testing.T) {
	tracker := newFakeTracker()
	engine, cache := newTestEngine(t, tracker, "1.6")

	evals := 0
	guard := mustGuard(t, func(ctx GuardContext) bool {
		evals++
		return true
	})

	set := newBugSet(cache, []Ref{{ID: 2}, {ID: 3}})
	d, err := engine.Decide(context.Background(), set, nil, guard)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != DecisionExpectedFailure {
		t.Fatalf("Kind = %s, want xfail", d.Kind)
	}
	if evals != 2 {
		t.Errorf("xfail guard evaluated %d times, want 2 (no short-circuit)", evals)
	}
	if len(d.BugIDs) != 2 {
		t.Errorf("BugIDs = %v, want both bugs", d.BugIDs)
	}
}

func TestDecideSkipStatusGuard(t *testing.T) {
	tracker := newFakeTracker()
	engine, cache := newTestEngine(t, tracker, "1.6")

	guard := mustGuard(t, func(ctx GuardContext) bool {
		return ctx.Bug.Status == "POST"
	}, ParamBug)
	set := newBugSet(cache, []Ref{{ID: 3}})
	d, err := engine.Decide(context.Background(), set, guard, nil)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != DecisionSkip {
		t.Errorf("Kind = %s, want skip for POST status guard", d.Kind)
	}
}

func TestDecideXFailFixedInGuard(t *testing.T) {
	tracker := newFakeTracker()
	engine, cache := newTestEngine(t, tracker, "1.6", "fixed_in")

	guard := mustGuard(t, func(ctx GuardContext) bool {
		fixedIn, err := ctx.Bug.LooseField("fixed_in")
		return err == nil && fixedIn.GreaterThan(ctx.Version)
	}, ParamBug, ParamVersion)

	set := newBugSet(cache, []Ref{{ID: 3}})
	d, err := engine.Decide(context.Background(), set, nil, guard)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Kind != DecisionExpectedFailure {
		t.Errorf("Kind = %s, want xfail for fixed_in 2.0 > version 1.6", d.Kind)
	}
}

func TestDecideFetchFailurePropagates(t *testing.T) {
	tracker := newFakeTracker()
	tracker.failing[1] = true
	engine, cache := newTestEngine(t, tracker, "1.6")

	set := newBugSet(cache, []Ref{{ID: 1}})
	if _, err := engine.Decide(context.Background(), set, nil, nil); err == nil {
		t.Fatal("expected tracker failure to propagate")
	}
}
