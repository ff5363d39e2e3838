package bzgate

import (
	"context"
	"fmt"
	"sync"
)

// BugCache resolves bug ids through the tracker client at most once for its
// lifetime, which is the lifetime of the test process. Entries are never
// evicted. Failed fetches are not stored, so the next lookup of that id
// retries the tracker.
//
// The mutex is there because go test runs parallel subtests inside one
// process; a fetch happens outside the lock and the first stored record for
// an id wins.
type BugCache struct {
	client      Client
	looseFields []string

	mu   sync.Mutex
	bugs map[int]*Bug
}

func NewBugCache(client Client, looseFields []string) *BugCache {
	return &BugCache{
		client:      client,
		looseFields: looseFields,
		bugs:        make(map[int]*Bug),
	}
}

// GetOrFetch returns the cached record for id, fetching and decorating it on
// the first request.
func (c *BugCache) GetOrFetch(ctx context.Context, id int) (*Bug, error) {
	c.mu.Lock()
	if b, ok := c.bugs[id]; ok {
		c.mu.Unlock()
		return b, nil
	}
	c.mu.Unlock()

	raw, err := c.client.FetchBug(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching bug %d: %w", id, err)
	}
	b := decorateBug(raw, c.looseFields)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.bugs[id]; ok {
		return existing, nil
	}
	c.bugs[id] = b
	return b, nil
}

func (c *BugCache) Contains(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.bugs[id]
	return ok
}

// Seed stores a record without consulting the tracker. Test suites use this
// to preload fake bugs; an already cached id keeps its first record.
func (c *BugCache) Seed(raw *RawBug) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.bugs[raw.ID]; ok {
		return
	}
	c.bugs[raw.ID] = decorateBug(raw, c.looseFields)
}

func (c *BugCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bugs)
}
