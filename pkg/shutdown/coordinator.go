package shutdown

import (
	"sync"
	"sync/atomic"

	"tinyhttpd/pkg/state/logger"
)

type State int32

const (
	StateRunning State = iota
	StateTerminated
)

func (s State) String() string {
	if s == StateTerminated {
		return "terminated"
	}
	return "running"
}

// Runner is the acceptor side of the protocol: Run returns only after it
// has stopped polling and disposed its pool.
type Runner interface {
	Run(stop <-chan struct{})
}

// Trigger watches an external source. It calls fire at most once to request
// termination and must return once stop is closed.
type Trigger func(stop <-chan struct{}, fire func(source string) bool)

// Coordinator turns the first stop request into an ordered shutdown. The
// Running to Terminated transition happens at most once.
type Coordinator struct {
	state  atomic.Int32
	once   sync.Once
	stop   chan struct{}
	source atomic.Value
}

func NewCoordinator() *Coordinator {
	return &Coordinator{stop: make(chan struct{})}
}

// Fire requests termination. It reports whether this call performed the
// transition; calls after the first are no-ops.
func (c *Coordinator) Fire(source string) bool {
	fired := false
	c.once.Do(func() {
		c.source.Store(source)
		c.state.Store(int32(StateTerminated))
		close(c.stop)
		fired = true
	})
	return fired
}

func (c *Coordinator) State() State { return State(c.state.Load()) }

// Stopped is closed when termination has been requested.
func (c *Coordinator) Stopped() <-chan struct{} { return c.stop }

// Source names the trigger that fired, "" while running.
func (c *Coordinator) Source() string {
	s, _ := c.source.Load().(string)
	return s
}

// Run starts the acceptor and every trigger, then blocks until
// termination has been requested, the acceptor has joined and every
// trigger has returned. An acceptor that exits on its own counts as a
// termination request.
func (c *Coordinator) Run(acc Runner, triggers ...Trigger) {
	var tw sync.WaitGroup
	for _, t := range triggers {
		tw.Add(1)
		go func(t Trigger) {
			defer tw.Done()
			t(c.stop, c.Fire)
		}(t)
	}

	accDone := make(chan struct{})
	go func() {
		defer close(accDone)
		acc.Run(c.stop)
	}()

	select {
	case <-c.stop:
	case <-accDone:
		c.Fire("acceptor")
	}
	logger.Info("shutdown: requested", "source", c.Source())

	<-accDone
	logger.Info("shutdown: acceptor joined")
	tw.Wait()
	logger.Info("shutdown: triggers joined")
}
