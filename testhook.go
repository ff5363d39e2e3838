package bzgate

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// Run gates t according to its bug annotation, then runs body.
//
// A skip decision calls t.Skip before body executes. An expected-failure
// decision runs body against a failure recorder: a recorded failure counts
// as the expected outcome and is only logged, while a body that passes is
// reported as an unexpected pass. Any other decision runs body directly
// against t.
func (g *Gater) Run(t *testing.T, body func(t testing.TB), opts ...Option) {
	t.Helper()
	decision, err := g.Decide(context.Background(), opts...)
	if err != nil {
		t.Fatalf("bzgate: %v", err)
	}
	switch decision.Kind {
	case DecisionSkip:
		t.Skip(decision.Reason)
	case DecisionExpectedFailure:
		rec := runRecorded(t, body)
		switch {
		case rec.isSkipped():
			t.Skip(rec.message())
		case rec.isFailed():
			t.Logf("bzgate: failed as expected: %s", decision.Reason)
			if msg := rec.message(); msg != "" {
				t.Logf("bzgate: recorded failure: %s", msg)
			}
		default:
			t.Errorf("bzgate: test passed unexpectedly: %s", decision.Reason)
		}
	default:
		body(t)
	}
}

// failRecorder stands in for *testing.T while an expected failure runs. It
// records failure and skip state instead of failing the real test.
// FailNow and SkipNow stop the body goroutine through runtime.Goexit, the
// same mechanism testing.T uses, which is why the body runs on its own
// goroutine.
type failRecorder struct {
	// Embedding the interface absorbs testing.TB's unexported method.
	// Anything not implemented or delegated below stays nil and must not
	// be called.
	testing.TB

	t *testing.T

	mu       sync.Mutex
	failed   bool
	skipped  bool
	msgs     []string
	cleanups []func()
}

func runRecorded(t *testing.T, body func(t testing.TB)) *failRecorder {
	rec := &failRecorder{t: t}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer rec.runCleanups()
		defer func() {
			// A panicking body is a failing body, the same way tRunner
			// treats a panic as a test failure.
			if v := recover(); v != nil {
				rec.record(fmt.Sprintf("panic: %v", v))
				rec.Fail()
			}
		}()
		body(rec)
	}()
	<-done
	return rec
}

func (r *failRecorder) runCleanups() {
	r.mu.Lock()
	cleanups := r.cleanups
	r.cleanups = nil
	r.mu.Unlock()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (r *failRecorder) record(msg string) {
	// Sprintln-built messages carry a trailing newline; keep stored
	// messages clean so relayed skip reasons and logs stay single-line.
	msg = strings.TrimSuffix(msg, "\n")
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg != "" {
		r.msgs = append(r.msgs, msg)
	}
}

func (r *failRecorder) isFailed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

func (r *failRecorder) isSkipped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped
}

func (r *failRecorder) message() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return ""
	}
	return r.msgs[len(r.msgs)-1]
}

func (r *failRecorder) Cleanup(f func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleanups = append(r.cleanups, f)
}

func (r *failRecorder) Error(args ...any) {
	r.record(fmt.Sprintln(args...))
	r.Fail()
}

func (r *failRecorder) Errorf(format string, args ...any) {
	r.record(fmt.Sprintf(format, args...))
	r.Fail()
}

func (r *failRecorder) Fail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
}

func (r *failRecorder) FailNow() {
	r.Fail()
	runtime.Goexit()
}

func (r *failRecorder) Failed() bool { return r.isFailed() }

func (r *failRecorder) Fatal(args ...any) {
	r.record(fmt.Sprintln(args...))
	r.FailNow()
}

func (r *failRecorder) Fatalf(format string, args ...any) {
	r.record(fmt.Sprintf(format, args...))
	r.FailNow()
}

func (r *failRecorder) Helper() {}

func (r *failRecorder) Log(args ...any)                 { r.record(fmt.Sprintln(args...)) }
func (r *failRecorder) Logf(format string, args ...any) { r.record(fmt.Sprintf(format, args...)) }

func (r *failRecorder) Name() string { return r.t.Name() }

func (r *failRecorder) TempDir() string { return r.t.TempDir() }

func (r *failRecorder) Setenv(key, value string) { r.t.Setenv(key, value) }

func (r *failRecorder) Skip(args ...any) {
	r.record(fmt.Sprintln(args...))
	r.SkipNow()
}

func (r *failRecorder) SkipNow() {
	r.mu.Lock()
	r.skipped = true
	r.mu.Unlock()
	runtime.Goexit()
}

func (r *failRecorder) Skipf(format string, args ...any) {
	r.record(fmt.Sprintf(format, args...))
	r.SkipNow()
}

func (r *failRecorder) Skipped() bool { return r.isSkipped() }
