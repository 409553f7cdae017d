// Package shutdown coordinates graceful teardown of a routing service:
// stop the configuration watcher first so no more snapshots arrive,
// then close the registry store, then release the guide index. Phases
// run in order; components in the same phase close concurrently.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"routekit/logging"
)

var (
	// ErrAlreadyStopped indicates Stop was already initiated.
	ErrAlreadyStopped = errors.New("shutdown already initiated")

	// ErrTimeout indicates teardown did not complete within the deadline.
	ErrTimeout = errors.New("shutdown timeout exceeded")

	// ErrCloserFailed indicates one or more closers failed.
	ErrCloserFailed = errors.New("one or more closers failed")
)

// Conventional phases for a routing service. Lower closes first.
const (
	PhaseWatchers = 10 // config watchers: stop snapshot production
	PhaseStores   = 20 // registry stores: stop serving swaps
	PhaseIndexes  = 30 // knowledge indexes: flush and release
)

// Closer is implemented by components that need orderly teardown. The
// context is cancelled when the overall deadline passes.
type Closer interface {
	Close(ctx context.Context) error
}

// CloserFunc adapts a plain function to Closer.
type CloserFunc func(ctx context.Context) error

// Close implements Closer.
func (f CloserFunc) Close(ctx context.Context) error {
	return f(ctx)
}

// registration is one component awaiting teardown.
type registration struct {
	name   string
	closer Closer
	phase  int
}

// Result records how one component's teardown went.
type Result struct {
	Name     string
	Phase    int
	Duration time.Duration
	Err      error
}

// Coordinator tears down registered components in phase order.
type Coordinator struct {
	mu      sync.Mutex
	regs    []registration
	once    sync.Once
	stopErr error
	done    chan struct{}
	results []Result
	sigCh   chan os.Signal
	log     *logging.Logger
	timeout time.Duration
}

// New creates a Coordinator. A nil logger disables logging; a zero
// timeout means 30 seconds for signal-triggered teardown.
func New(log *logging.Logger, timeout time.Duration) *Coordinator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Coordinator{
		done:    make(chan struct{}),
		sigCh:   make(chan os.Signal, 1),
		log:     log,
		timeout: timeout,
	}
}

// Register adds a component at the given phase.
func (c *Coordinator) Register(name string, closer Closer, phase int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regs = append(c.regs, registration{name: name, closer: closer, phase: phase})
}

// RegisterFunc adds a plain function at the given phase.
func (c *Coordinator) RegisterFunc(name string, fn func(ctx context.Context) error, phase int) {
	c.Register(name, CloserFunc(fn), phase)
}

// Stop tears everything down. Later calls return the first outcome.
func (c *Coordinator) Stop(ctx context.Context) error {
	first := false
	c.once.Do(func() {
		first = true
		c.stopErr = c.run(ctx)
		close(c.done)
	})
	if !first {
		select {
		case <-c.done:
			return c.stopErr
		default:
			return ErrAlreadyStopped
		}
	}
	return c.stopErr
}

// StopWithTimeout tears everything down under a deadline.
func (c *Coordinator) StopWithTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.Stop(ctx)
}

// HandleSignals arranges teardown on SIGTERM or SIGINT.
func (c *Coordinator) HandleSignals() {
	signal.Notify(c.sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-c.sigCh
		_ = c.StopWithTimeout(c.timeout)
	}()
}

// Trigger injects a synthetic stop signal.
func (c *Coordinator) Trigger() {
	select {
	case c.sigCh <- syscall.SIGTERM:
	default:
	}
}

// Done is closed once teardown completes.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Results returns per-component outcomes. Valid once Done is closed.
func (c *Coordinator) Results() []Result {
	select {
	case <-c.done:
		return c.results
	default:
		return nil
	}
}

func (c *Coordinator) run(ctx context.Context) error {
	c.mu.Lock()
	regs := make([]registration, len(c.regs))
	copy(regs, c.regs)
	c.mu.Unlock()

	sort.SliceStable(regs, func(i, j int) bool {
		return regs[i].phase < regs[j].phase
	})

	var overall error
	for start := 0; start < len(regs); {
		end := start
		for end < len(regs) && regs[end].phase == regs[start].phase {
			end++
		}

		select {
		case <-ctx.Done():
			return ErrTimeout
		default:
		}

		for _, r := range c.runPhase(ctx, regs[start:end]) {
			c.results = append(c.results, r)
			if r.Err != nil {
				overall = ErrCloserFailed
				if c.log != nil {
					c.log.Error("component close failed", map[string]interface{}{
						"component": r.Name,
						"error":     r.Err.Error(),
					})
				}
			} else if c.log != nil {
				c.log.Debug("component closed", map[string]interface{}{
					"component": r.Name,
					"duration":  r.Duration.String(),
				})
			}
		}
		start = end
	}
	return overall
}

// runPhase closes every component in one phase concurrently.
func (c *Coordinator) runPhase(ctx context.Context, regs []registration) []Result {
	results := make([]Result, len(regs))
	var wg sync.WaitGroup
	for i, reg := range regs {
		wg.Add(1)
		go func(idx int, r registration) {
			defer wg.Done()
			start := time.Now()
			err := r.closer.Close(ctx)
			results[idx] = Result{
				Name:     r.name,
				Phase:    r.phase,
				Duration: time.Since(start),
				Err:      err,
			}
		}(i, reg)
	}
	wg.Wait()
	return results
}
