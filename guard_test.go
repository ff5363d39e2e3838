package bzgate

import (
	"strings"
	"testing"
)

func TestNewGuardValidParams(t *testing.T) {
	g, err := NewGuard(func(ctx GuardContext) bool {
		return ctx.Bug.Status == "POST"
	}, ParamBug)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	if len(g.Params()) != 1 || g.Params()[0] != ParamBug {
		t.Errorf("Params() = %v, want [bug]", g.Params())
	}
}

func TestNewGuardUnknownParam(t *testing.T) {
	_, err := NewGuard(func(GuardContext) bool { return true }, ParamBug, GuardParam("platform"))
	if err == nil {
		t.Fatal("expected error for unknown guard parameter")
	}
	if !strings.Contains(err.Error(), "platform") {
		t.Errorf("error %q does not name the offending parameter", err)
	}
}

func TestNewGuardNilFunc(t *testing.T) {
	if _, err := NewGuard(nil); err == nil {
		t.Fatal("expected error for nil guard function")
	}
}

func TestGuardZeroParamsIsConstant(t *testing.T) {
	g, err := NewGuard(func(GuardContext) bool { return true })
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	if !g.Eval(GuardContext{}) {
		t.Error("zero-parameter guard should evaluate its function unconditionally")
	}
}

func TestGuardEval(t *testing.T) {
	version, _ := ParseLooseVersion("1.6")
	bug := decorateBug(&RawBug{ID: 3, Status: "POST", FixedIn: "2.0"}, []string{"fixed_in"})

	g, err := NewGuard(func(ctx GuardContext) bool {
		fixedIn, err := ctx.Bug.LooseField("fixed_in")
		return err == nil && fixedIn.GreaterThan(ctx.Version)
	}, ParamBug, ParamVersion)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}
	if !g.Eval(GuardContext{Bug: bug, Version: version}) {
		t.Error("expected guard true for fixed_in 2.0 > version 1.6")
	}

	newer, _ := ParseLooseVersion("2.1")
	if g.Eval(GuardContext{Bug: bug, Version: newer}) {
		t.Error("expected guard false for fixed_in 2.0 <= version 2.1")
	}
}
