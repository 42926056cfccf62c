package acceptor

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"tinyhttpd/pkg/metrics"
	"tinyhttpd/pkg/pool"
	"tinyhttpd/pkg/state/logger"
)

// DefaultPollInterval bounds how long the loop can go without observing a
// stop request.
const DefaultPollInterval = 100 * time.Millisecond

const maxAcceptBackoff = time.Second

type State int32

const (
	StatePolling State = iota
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Executor runs jobs and can be disposed once. *pool.WorkerPool satisfies it.
type Executor interface {
	Execute(job pool.Job) error
	Dispose()
}

// ConnHandler owns a connection from the moment it is handed over.
type ConnHandler interface {
	ServeConn(conn net.Conn)
}

// Listener is a net.Listener whose Accept can be bounded by a deadline.
type Listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

type Options struct {
	PollInterval time.Duration
}

// Acceptor owns the listening socket and feeds accepted connections to the
// pool until it is stopped.
type Acceptor struct {
	ln      Listener
	pool    Executor
	handler ConnHandler
	poll    time.Duration

	state   atomic.Int32
	errLog  *rate.Limiter
	done    chan struct{}
	started atomic.Bool
}

func New(ln net.Listener, p Executor, h ConnHandler, opts Options) (*Acceptor, error) {
	dl, ok := ln.(Listener)
	if !ok {
		return nil, fmt.Errorf("listener %T does not support deadlines", ln)
	}
	if p == nil || h == nil {
		return nil, errors.New("acceptor needs a pool and a handler")
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Acceptor{
		ln:      dl,
		pool:    p,
		handler: h,
		poll:    poll,
		errLog:  rate.NewLimiter(rate.Every(time.Second), 5),
		done:    make(chan struct{}),
	}, nil
}

func (a *Acceptor) Addr() net.Addr { return a.ln.Addr() }

func (a *Acceptor) State() State { return State(a.state.Load()) }

// Done is closed once the loop has exited and the pool is disposed.
func (a *Acceptor) Done() <-chan struct{} { return a.done }

// Run polls for connections until stop is closed, then closes the
// listener and disposes the pool before returning. Run may be called once.
func (a *Acceptor) Run(stop <-chan struct{}) {
	if !a.started.CompareAndSwap(false, true) {
		<-a.done
		return
	}
	logger.Info("acceptor_started", "addr", a.ln.Addr().String(), "poll_interval", a.poll.String())
	defer a.drain()

	var backoff time.Duration
	for {
		select {
		case <-stop:
			logger.Info("acceptor_terminating")
			return
		default:
		}

		if err := a.ln.SetDeadline(time.Now().Add(a.poll)); err != nil {
			logger.Error("listener_deadline_failed", "error", err)
			return
		}
		conn, err := a.ln.Accept()
		if err != nil {
			var ne net.Error
			switch {
			case errors.As(err, &ne) && ne.Timeout():
				// nothing pending within the poll interval
				backoff = 0
				continue
			case errors.Is(err, net.ErrClosed):
				logger.Warn("listener_closed")
				return
			}
			metrics.AcceptErrors.Inc()
			if a.errLog.Allow() {
				logger.Error("accept_failed", "error", err)
			}
			backoff = nextBackoff(backoff)
			select {
			case <-stop:
				logger.Info("acceptor_terminating")
				return
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0
		metrics.ConnectionsAccepted.Inc()
		a.submit(conn)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > maxAcceptBackoff {
		d = maxAcceptBackoff
	}
	return d
}

func (a *Acceptor) submit(conn net.Conn) {
	err := a.pool.Execute(func() { a.handler.ServeConn(conn) })
	if err != nil {
		logger.Warn("connection_dropped", "remote", conn.RemoteAddr().String(), "error", err)
		_ = conn.Close()
	}
}

func (a *Acceptor) drain() {
	a.state.Store(int32(StateDraining))
	if err := a.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		logger.Warn("listener_close_failed", "error", err)
	}
	a.pool.Dispose()
	a.state.Store(int32(StateStopped))
	logger.Info("acceptor_stopped")
	close(a.done)
}
