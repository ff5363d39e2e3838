package bzgate

import (
	"context"
	"fmt"
	"sync"
)

// fakeTracker serves canned bug records and counts fetches per id.
type fakeTracker struct {
	mu      sync.Mutex
	bugs    map[int]*RawBug
	fetches map[int]int
	failing map[int]bool
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		bugs: map[int]*RawBug{
			1: {ID: 1, Status: "NEW", Resolution: "foo 1", Summary: "ONE"},
			2: {ID: 2, Status: "CLOSED", Resolution: "foo 2", Summary: "TWO"},
			3: {ID: 3, Status: "POST", Resolution: "foo 3", Summary: "THREE", FixedIn: "2.0"},
			4: {ID: 4, Status: "NEW", Resolution: "foo 4", Summary: "FOUR"},
		},
		fetches: make(map[int]int),
		failing: make(map[int]bool),
	}
}

func (f *fakeTracker) FetchBug(ctx context.Context, id int) (*RawBug, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[id]++
	if f.failing[id] {
		return nil, fmt.Errorf("tracker unavailable for bug %d", id)
	}
	bug, ok := f.bugs[id]
	if !ok {
		return nil, fmt.Errorf("bugzilla returned no record for bug %d", id)
	}
	clone := *bug
	return &clone, nil
}

func (f *fakeTracker) ShowBugURL(id int) string {
	return fmt.Sprintf("https://bugzilla.example.com/show_bug.cgi?id=%d", id)
}

func (f *fakeTracker) fetchCount(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[id]
}
