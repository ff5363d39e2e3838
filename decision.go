package bzgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DecisionKind is the terminal outcome of gating one test.
type DecisionKind int

const (
	DecisionRun DecisionKind = iota
	DecisionSkip
	DecisionExpectedFailure
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionRun:
		return "run"
	case DecisionSkip:
		return "skip"
	case DecisionExpectedFailure:
		return "xfail"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
}

// Decision is what the engine decided for one test, with a human-readable
// reason. BugIDs names the bugs contributing to an expected failure.
type Decision struct {
	Kind   DecisionKind
	Reason string
	BugIDs []int
}

// openStatuses are the tracker states meaning development has not started.
// A test is skipped only while every one of its bugs sits in this set.
var openStatuses = map[string]bool{
	"NEW":      true,
	"ASSIGNED": true,
	"ON_DEV":   true,
}

// DecisionEngine maps a test's bug set plus optional guards to a Decision.
type DecisionEngine struct {
	client  Client
	version LooseVersion
}

func NewDecisionEngine(client Client, version LooseVersion) *DecisionEngine {
	return &DecisionEngine{client: client, version: version}
}

// Decide runs the gating algorithm once, at test setup:
//
//  1. if every bug in the set is still open, skip;
//  2. else if the skip guard holds for any single bug, skip;
//  3. else if the xfail guard holds for any bugs, expect a failure,
//     attributing every bug it held for;
//  4. else run.
//
// An empty set never skips by rule 1 and a resolution failure aborts the
// decision.
func (e *DecisionEngine) Decide(ctx context.Context, set *BugSet, skipWhen, xfailWhen *Guard) (Decision, error) {
	var open []*Bug
	total := 0
	err := set.Each(ctx, func(b *Bug) error {
		total++
		if openStatuses[b.Status] {
			open = append(open, b)
		}
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	if total > 0 && len(open) == total {
		var lines []string
		for _, b := range open {
			lines = append(lines, fmt.Sprintf("%s %s", b.Status, e.client.ShowBugURL(b.ID)))
		}
		return Decision{
			Kind:   DecisionSkip,
			Reason: "every referenced bug is still unresolved:\n" + strings.Join(lines, "\n"),
		}, nil
	}

	if skipWhen != nil {
		skipped := false
		err := set.Each(ctx, func(b *Bug) error {
			if skipWhen.Eval(GuardContext{Bug: b, Version: e.version}) {
				skipped = true
				return errStopIteration
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			return Decision{}, err
		}
		if skipped {
			return Decision{Kind: DecisionSkip, Reason: "skipped due to a guard condition"}, nil
		}
	}

	if xfailWhen != nil {
		var ids []int
		var urls []string
		err := set.Each(ctx, func(b *Bug) error {
			if xfailWhen.Eval(GuardContext{Bug: b, Version: e.version}) {
				ids = append(ids, b.ID)
				urls = append(urls, e.client.ShowBugURL(b.ID))
			}
			return nil
		})
		if err != nil {
			return Decision{}, err
		}
		if len(ids) > 0 {
			return Decision{
				Kind:   DecisionExpectedFailure,
				Reason: "expected failure due to bugs: " + strings.Join(urls, ", "),
				BugIDs: ids,
			}, nil
		}
	}

	return Decision{Kind: DecisionRun}, nil
}

// errStopIteration short-circuits Each once a skip guard fires.
var errStopIteration = errors.New("stop iteration")
