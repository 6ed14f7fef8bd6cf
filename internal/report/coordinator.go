package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrSuperseded is returned to a load that finished after a newer load for
// the same view had started. Its result has been discarded.
var ErrSuperseded = errors.New("report load superseded by a newer request")

// LoadFunc computes the rows for one load. It must honour ctx cancellation.
type LoadFunc func(ctx context.Context) ([]StudentSummary, error)

type view struct {
	state   ViewState
	cancel  context.CancelFunc
	touched time.Time
}

// Coordinator serialises report loads per view key. A new load cancels any
// in-flight load for the same key, and only the newest load may update the
// view's state.
type Coordinator struct {
	mu     sync.Mutex
	views  map[string]*view
	policy FailurePolicy
	now    func() time.Time
}

// NewCoordinator creates a Coordinator applying policy on failed loads.
func NewCoordinator(policy FailurePolicy) *Coordinator {
	if policy != FailureClear {
		policy = FailureRetain
	}
	return &Coordinator{
		views:  make(map[string]*view),
		policy: policy,
		now:    time.Now,
	}
}

// Run starts a load for key with filter f and waits for it.
//
// On success it returns the loaded state. On failure it returns the failed
// state together with the load error. If a newer Run for the same key began
// meanwhile, it returns ErrSuperseded and leaves the state untouched.
func (c *Coordinator) Run(ctx context.Context, key string, f Filter, load LoadFunc) (ViewState, error) {
	c.mu.Lock()
	v, ok := c.views[key]
	if !ok {
		v = &view{state: NewViewState()}
		c.views[key] = v
	}
	if v.cancel != nil {
		v.cancel()
	}
	gen := v.state.Generation + 1
	taskCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.touched = c.now()
	v.state = Reduce(v.state, LoadStarted{Generation: gen, Filter: f, At: v.touched}, c.policy)
	c.mu.Unlock()

	rows, err := load(taskCtx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if v.state.Generation != gen {
		return ViewState{}, ErrSuperseded
	}
	v.cancel = nil
	v.touched = c.now()

	if err != nil {
		v.state = Reduce(v.state, LoadFailed{Generation: gen, Err: err, At: v.touched}, c.policy)
		return v.state, err
	}
	v.state = Reduce(v.state, LoadSucceeded{Generation: gen, Students: rows, At: v.touched}, c.policy)
	return v.state, nil
}

// Snapshot returns the current state of a view.
func (c *Coordinator) Snapshot(key string) (ViewState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[key]
	if !ok {
		return ViewState{}, false
	}
	return v.state, true
}

// Prune drops idle views untouched for longer than ttl and returns how many
// were removed. Views with a load in flight are kept.
func (c *Coordinator) Prune(ttl time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-ttl)
	removed := 0
	for key, v := range c.views {
		if v.cancel == nil && v.touched.Before(cutoff) {
			delete(c.views, key)
			removed++
		}
	}
	return removed
}

// ScheduleJanitor registers a job on sched that prunes views idle for
// longer than ttl. onPrune, if set, receives the count of each non-empty run.
func (c *Coordinator) ScheduleJanitor(sched *cron.Cron, spec string, ttl time.Duration, onPrune func(int)) (cron.EntryID, error) {
	return sched.AddFunc(spec, func() {
		if n := c.Prune(ttl); n > 0 && onPrune != nil {
			onPrune(n)
		}
	})
}
