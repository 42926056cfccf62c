package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeAcceptor struct {
	rec   *recorder
	delay time.Duration
	exit  chan struct{}
}

func (f *fakeAcceptor) Run(stop <-chan struct{}) {
	select {
	case <-stop:
	case <-f.exit:
	}
	time.Sleep(f.delay)
	f.rec.add("acceptor")
}

func TestFireOnce(t *testing.T) {
	c := NewCoordinator()
	assert.Equal(t, StateRunning, c.State())
	assert.Equal(t, "", c.Source())

	assert.True(t, c.Fire("console"))
	assert.False(t, c.Fire("signal"))
	assert.Equal(t, StateTerminated, c.State())
	assert.Equal(t, "console", c.Source())

	select {
	case <-c.Stopped():
	default:
		t.Fatal("stop channel not closed")
	}
}

func TestConcurrentFire(t *testing.T) {
	c := NewCoordinator()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Fire("race") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestRunJoinsAcceptorThenTriggers(t *testing.T) {
	rec := &recorder{}
	acc := &fakeAcceptor{rec: rec, delay: 20 * time.Millisecond, exit: make(chan struct{})}
	c := NewCoordinator()

	firing := func(stop <-chan struct{}, fire func(string) bool) {
		time.Sleep(10 * time.Millisecond)
		fire("console")
		<-stop
		time.Sleep(40 * time.Millisecond)
		rec.add("console")
	}
	idle := func(stop <-chan struct{}, fire func(string) bool) {
		<-stop
		rec.add("idle")
	}

	done := make(chan struct{})
	go func() {
		c.Run(acc, firing, idle)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	events := rec.list()
	require.Len(t, events, 3)
	assert.ElementsMatch(t, []string{"acceptor", "console", "idle"}, events)
	assert.Equal(t, "console", events[len(events)-1])
	assert.Equal(t, "console", c.Source())
}

func TestAcceptorExitTerminates(t *testing.T) {
	rec := &recorder{}
	acc := &fakeAcceptor{rec: rec, exit: make(chan struct{})}
	close(acc.exit)
	c := NewCoordinator()

	watched := false
	c.Run(acc, func(stop <-chan struct{}, fire func(string) bool) {
		<-stop
		watched = true
	})

	assert.True(t, watched)
	assert.Equal(t, StateTerminated, c.State())
	assert.Equal(t, "acceptor", c.Source())
}

func TestContextTrigger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewCoordinator()
	trig := ContextTrigger(ctx, "signal")

	done := make(chan struct{})
	go func() {
		trig(c.Stopped(), c.Fire)
		close(done)
	}()
	cancel()
	<-done
	assert.Equal(t, "signal", c.Source())

	// already stopped: returns without firing
	c2 := NewCoordinator()
	c2.Fire("console")
	ContextTrigger(context.Background(), "signal")(c2.Stopped(), c2.Fire)
	assert.Equal(t, "console", c2.Source())
}

func TestAbortExitsWithTwo(t *testing.T) {
	code := -1
	exit = func(c int) { code = c }
	defer func() { exit = osExit }()

	Abort("bind failed", errors.New("address in use"))
	assert.Equal(t, 2, code)
}
