package bzgate

import (
	"errors"
	"fmt"
)

// GuardContext carries the values a guard may consult: the bug under
// consideration and the tested product version. Guards see one bug at a
// time; the version is shared across every evaluation for one test.
type GuardContext struct {
	Bug     *Bug
	Version LooseVersion
}

// GuardParam names a context value a guard declares it reads. Declaring a
// name the context does not supply is a configuration error caught when the
// guard is built, not when it runs.
type GuardParam string

const (
	ParamBug     GuardParam = "bug"
	ParamVersion GuardParam = "version"
)

// Guard is a user-supplied boolean condition over bug and version, used to
// conditionally skip or expect-fail a test.
type Guard struct {
	fn     func(GuardContext) bool
	params []GuardParam
}

// NewGuard wraps fn with its declared parameters. A guard declaring no
// parameters evaluates fn as a constant over any context.
func NewGuard(fn func(GuardContext) bool, params ...GuardParam) (*Guard, error) {
	if fn == nil {
		return nil, errors.New("guard function must not be nil")
	}
	for _, p := range params {
		switch p {
		case ParamBug, ParamVersion:
		default:
			return nil, fmt.Errorf("guard declares parameter %q, which the context does not supply", p)
		}
	}
	return &Guard{fn: fn, params: params}, nil
}

// Params returns the declared parameter names.
func (g *Guard) Params() []GuardParam {
	out := make([]GuardParam, len(g.params))
	copy(out, g.params)
	return out
}

// Eval runs the guard against one bug's context.
func (g *Guard) Eval(ctx GuardContext) bool {
	return g.fn(ctx)
}
