package bzgate

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Gater owns the tracker client, the process-wide bug cache and the per-run
// bug set registry. One Gater serves a whole test binary; build it in
// TestMain and share it.
//
// A Gater built from incomplete configuration is disabled: Decide always
// answers run and Run executes bodies untouched.
type Gater struct {
	enabled bool
	cfg     Config
	client  Client
	cache   *BugCache
	version LooseVersion
	engine  *DecisionEngine

	mu   sync.Mutex
	sets map[string]*BugSet
}

// New builds a Gater from cfg. Incomplete configuration disables gating
// with a log line; a malformed product version is an error.
func New(cfg Config) (*Gater, error) {
	if !cfg.Complete() {
		log.Printf("bzgate: gating disabled, bugzilla_url or product_version not configured")
		// The cache still exists so suites that seed fake records keep
		// working against a disabled gater.
		return &Gater{cfg: cfg, cache: NewBugCache(nil, cfg.LooseFields)}, nil
	}
	version, err := ParseLooseVersion(cfg.ProductVersion)
	if err != nil {
		return nil, fmt.Errorf("product version: %w", err)
	}
	client := NewRESTClient(cfg)
	return newGater(cfg, client, version), nil
}

// NewWithClient is New with the tracker client supplied by the caller, for
// hosts that already hold a client or for offline fakes.
func NewWithClient(cfg Config, client Client) (*Gater, error) {
	version, err := ParseLooseVersion(cfg.ProductVersion)
	if err != nil {
		return nil, fmt.Errorf("product version: %w", err)
	}
	return newGater(cfg, client, version), nil
}

// NewFromEnvironment loads configuration (see LoadConfig) and builds the
// Gater from it.
func NewFromEnvironment() (*Gater, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func newGater(cfg Config, client Client, version LooseVersion) *Gater {
	return &Gater{
		enabled: true,
		cfg:     cfg,
		client:  client,
		cache:   NewBugCache(client, cfg.LooseFields),
		version: version,
		engine:  NewDecisionEngine(client, version),
		sets:    make(map[string]*BugSet),
	}
}

// Enabled reports whether tests are being gated at all.
func (g *Gater) Enabled() bool { return g.enabled }

// Cache exposes the bug cache, mainly so suites can seed fake records.
func (g *Gater) Cache() *BugCache { return g.cache }

// annotation is the assembled per-test metadata: bug references plus the
// optional guards.
type annotation struct {
	refs      []Ref
	skipWhen  *Guard
	xfailWhen *Guard
}

// Option is one argument of a bug annotation.
type Option func(*annotation) error

// Bugs declares blocking bugs by id, accepting integer and string forms.
func Bugs(ids ...any) Option {
	return func(a *annotation) error {
		for _, arg := range ids {
			id, err := normalizeBugID(arg)
			if err != nil {
				return err
			}
			a.refs = append(a.refs, Ref{ID: id})
		}
		return nil
	}
}

// Refs declares blocking bugs with attached metadata.
func Refs(refs ...Ref) Option {
	return func(a *annotation) error {
		a.refs = append(a.refs, refs...)
		return nil
	}
}

// SkipWhen skips the test for the first declared bug the condition holds
// for.
func SkipWhen(fn func(GuardContext) bool, params ...GuardParam) Option {
	return func(a *annotation) error {
		guard, err := NewGuard(fn, params...)
		if err != nil {
			return fmt.Errorf("skip_when: %w", err)
		}
		a.skipWhen = guard
		return nil
	}
}

// XFailWhen expects the test to fail when the condition holds for any
// declared bug.
func XFailWhen(fn func(GuardContext) bool, params ...GuardParam) Option {
	return func(a *annotation) error {
		guard, err := NewGuard(fn, params...)
		if err != nil {
			return fmt.Errorf("xfail_when: %w", err)
		}
		a.xfailWhen = guard
		return nil
	}
}

func buildAnnotation(opts []Option) (*annotation, error) {
	var a annotation
	for _, opt := range opts {
		if err := opt(&a); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

// bugSet returns the shared set for these references, creating it on first
// sight of the canonical id tuple.
func (g *Gater) bugSet(refs []Ref) *BugSet {
	set := newBugSet(g.cache, refs)
	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.sets[set.Key()]; ok {
		return existing
	}
	g.sets[set.Key()] = set
	log.Printf("bzgate: tracking bug set {%s} (%d sets total)", set.Key(), len(g.sets))
	return set
}

// SetCount returns how many distinct bug sets the run has declared so far.
func (g *Gater) SetCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sets)
}

// Decide assembles the annotation and runs the decision engine. This is the
// host-neutral entry point; the testing adapter sits on top of it. Option
// errors (bad bug ids, unknown guard parameters) surface even when gating is
// disabled, they are programmer errors in the suite.
func (g *Gater) Decide(ctx context.Context, opts ...Option) (Decision, error) {
	ann, err := buildAnnotation(opts)
	if err != nil {
		return Decision{}, err
	}
	if !g.enabled || len(ann.refs) == 0 {
		return Decision{Kind: DecisionRun}, nil
	}
	set := g.bugSet(ann.refs)
	return g.engine.Decide(ctx, set, ann.skipWhen, ann.xfailWhen)
}
