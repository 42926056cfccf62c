package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/valyala/fasthttp"

	"tinyhttpd/internal/report"
	"tinyhttpd/pkg/acceptor"
	"tinyhttpd/pkg/config"
	"tinyhttpd/pkg/config/banner"
	"tinyhttpd/pkg/console"
	"tinyhttpd/pkg/files"
	"tinyhttpd/pkg/handler"
	"tinyhttpd/pkg/journal"
	"tinyhttpd/pkg/metrics"
	"tinyhttpd/pkg/pool"
	"tinyhttpd/pkg/shutdown"
	"tinyhttpd/pkg/state/logger"
)

// App groups server state and components.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string
	out       io.Writer

	files   *files.Store
	journal *journal.Journal
	pool    *pool.WorkerPool
	ln      net.Listener
	acc     *acceptor.Acceptor
	coord   *shutdown.Coordinator
	console *console.Console

	admin        *fasthttp.Server
	adminLn      net.Listener
	adminErr     chan error
	adminClosing atomic.Bool
	reportCancel context.CancelFunc
	runErr       error

	ran          atomic.Bool
	shutdownOnce sync.Once
}

// New builds every component and binds the listener. Nothing is served
// until Run.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	if eff.Config == nil {
		return nil, fmt.Errorf("effective config is nil")
	}
	cfg := eff.Config
	a := &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		out:       os.Stdout,
		coord:     shutdown.NewCoordinator(),
		adminErr:  make(chan error, 1),
	}

	logger.LogConfigSummary("config_summary", []string{
		fmt.Sprintf("listen: %s", eff.Addr),
		fmt.Sprintf("web_root: %s", cfg.Server.WebRoot),
		fmt.Sprintf("workers: %d", cfg.Pool.Size()),
		fmt.Sprintf("read_buffer: %s", humanize.IBytes(uint64(cfg.Server.ReadBufferSize.Int64()))),
		fmt.Sprintf("poll_interval: %s", cfg.Server.PollInterval.Duration()),
		fmt.Sprintf("source: %s", eff.Source),
	})

	a.files = files.NewStore(cfg.Server.WebRoot, cfg.Server.Index)
	if st, err := os.Stat(cfg.Server.WebRoot); err != nil || !st.IsDir() {
		logger.Warn("web_root_missing", "path", cfg.Server.WebRoot, "msg", "every GET will be 404")
	}

	opts := handler.Options{Files: a.files, ReadBufferSize: cfg.Server.ReadBufferSize.Int()}
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, err
		}
		a.journal = j
		opts.Journal = j
	}
	h := handler.New(opts)

	p, err := pool.New(cfg.Pool.Size())
	if err != nil {
		a.closeJournal()
		return nil, err
	}
	a.pool = p

	ln, err := acceptor.Listen(context.Background(), eff.Addr)
	if err != nil {
		p.Dispose()
		a.closeJournal()
		return nil, err
	}
	a.ln = ln

	acc, err := acceptor.New(ln, p, h, acceptor.Options{PollInterval: cfg.Server.PollInterval.Duration()})
	if err != nil {
		_ = ln.Close()
		p.Dispose()
		a.closeJournal()
		return nil, err
	}
	a.acc = acc

	if cfg.Console.IsEnabled() {
		a.console = console.Stdio(cfg.Console.Prompt)
	}
	return a, nil
}

// Addr is the bound listen address, useful when the configured port is 0.
func (a *App) Addr() net.Addr { return a.acc.Addr() }

// Stop requests termination as if source had fired.
func (a *App) Stop(source string) bool { return a.coord.Fire(source) }

// Run starts serving and blocks until a stop trigger fires and the acceptor,
// the pool and every trigger have joined.
func (a *App) Run(ctx context.Context) error {
	if !a.ran.CompareAndSwap(false, true) {
		return fmt.Errorf("app already ran")
	}
	a.printBanner()

	cfg := a.eff.Config
	if cfg.Metrics.Enabled {
		if err := a.startAdmin(cfg.MetricsAddr()); err != nil {
			a.coord.Fire("admin")
			a.acc.Run(a.coord.Stopped())
			return err
		}
	}
	if cfg.Report.Enabled {
		cancel, err := report.Start(ctx, cfg.Report.Cron, a.snapshot)
		if err != nil {
			logger.Error("report_start_failed", "error", err)
		} else {
			a.reportCancel = cancel
		}
	}

	triggers := []shutdown.Trigger{
		shutdown.ContextTrigger(ctx, "signal"),
		a.adminTrigger,
	}
	if a.console != nil {
		triggers = append(triggers, a.console.Run)
	}

	if tcp, ok := a.Addr().(*net.TCPAddr); ok {
		logger.Info("server_starting", "port", tcp.Port)
	}
	a.coord.Run(a.acc, triggers...)
	logger.Info("server_terminated", "source", a.coord.Source())
	return a.runErr
}

// adminTrigger fires when the admin server stops unexpectedly.
func (a *App) adminTrigger(stop <-chan struct{}, fire func(string) bool) {
	if a.admin == nil {
		<-stop
		return
	}
	select {
	case err := <-a.adminErr:
		logger.Error("admin_server_failed", "error", err)
		a.runErr = fmt.Errorf("admin server: %w", err)
		fire("admin")
	case <-stop:
	}
}

func (a *App) snapshot() report.Snapshot {
	total, errs := metrics.Totals()
	return report.Snapshot{Served: total, Errors: errs, Pending: a.pool.Pending(), Busy: a.pool.Busy()}
}

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "" && a.commit != "none" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "" && a.buildDate != "unknown" {
		verStr += " @ " + a.buildDate
	}
	eff := a.eff
	eff.Addr = a.Addr().String()
	banner.Print(a.out, eff, verStr)
}

func (a *App) closeJournal() {
	if a.journal == nil {
		return
	}
	if err := a.journal.Close(); err != nil {
		logger.Error("journal_close_failed", "error", err)
	}
}
