package bzgate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrNotInSet reports a lookup of a bug id a set was not declared with.
var ErrNotInSet = errors.New("bug not declared in this set")

// Ref names one tracked bug on a test, optionally with matching metadata.
// Meta is carried through canonicalization untouched; the decision engine
// does not interpret it.
type Ref struct {
	ID   int
	Meta map[string]string
}

// BugSet is one test's declared group of bug references, canonicalized:
// ids are deduplicated and sorted ascending, so two annotations naming the
// same bugs in a different order share a set. Immutable once built.
type BugSet struct {
	ids   []int
	refs  map[int]Ref
	cache *BugCache
}

func newBugSet(cache *BugCache, refs []Ref) *BugSet {
	byID := make(map[int]Ref, len(refs))
	for _, r := range refs {
		if _, ok := byID[r.ID]; ok {
			continue
		}
		byID[r.ID] = r
	}
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return &BugSet{ids: ids, refs: byID, cache: cache}
}

// IDs returns the canonical id list.
func (s *BugSet) IDs() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

// Ref returns the declared reference for id, metadata included.
func (s *BugSet) Ref(id int) (Ref, bool) {
	r, ok := s.refs[id]
	return r, ok
}

// Key is the canonical identity of the set, used to share sets across tests
// declaring the same bugs.
func (s *BugSet) Key() string {
	parts := make([]string, len(s.ids))
	for i, id := range s.ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Each resolves the set's bugs through the cache in id order, lazily: fn
// runs as each bug becomes available, and a resolution failure stops the
// iteration. Re-iterating is served from the cache.
func (s *BugSet) Each(ctx context.Context, fn func(*Bug) error) error {
	for _, id := range s.ids {
		bug, err := s.cache.GetOrFetch(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(bug); err != nil {
			return err
		}
	}
	return nil
}

// Bugs resolves and returns every bug in the set.
func (s *BugSet) Bugs(ctx context.Context) ([]*Bug, error) {
	out := make([]*Bug, 0, len(s.ids))
	err := s.Each(ctx, func(b *Bug) error {
		out = append(out, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ByID resolves a single declared bug. Ids outside the declared set are
// rejected even when the cache holds them.
func (s *BugSet) ByID(ctx context.Context, id int) (*Bug, error) {
	if _, ok := s.refs[id]; !ok {
		return nil, fmt.Errorf("bug %d: %w", id, ErrNotInSet)
	}
	return s.cache.GetOrFetch(ctx, id)
}

// normalizeBugID accepts the argument forms a bug annotation may carry: an
// integer or its string spelling.
func normalizeBugID(arg any) (int, error) {
	switch v := arg.(type) {
	case int:
		return v, nil
	case string:
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("bug id %q is not a number", v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("bug id %v has unsupported type %T", arg, arg)
	}
}
