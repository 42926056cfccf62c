package app

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"tinyhttpd/pkg/acceptor"
	"tinyhttpd/pkg/shutdown"
	"tinyhttpd/pkg/state/logger"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 1000
)

// adminHandler routes the admin surface: metrics, health and the journal.
func (a *App) adminHandler() fasthttp.RequestHandler {
	prom := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(ctx *fasthttp.RequestCtx) {
		if !ctx.IsGet() && !ctx.IsHead() {
			writeJSON(ctx, fasthttp.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		switch string(ctx.Path()) {
		case "/metrics":
			prom(ctx)
		case "/healthz":
			writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		case "/readyz":
			a.readyz(ctx)
		case "/journal":
			a.journalEntries(ctx)
		default:
			writeJSON(ctx, fasthttp.StatusNotFound, map[string]string{"error": "not found"})
		}
	}
}

// readyz is 200 only while new connections are being accepted.
func (a *App) readyz(ctx *fasthttp.RequestCtx) {
	st := a.acc.State()
	if st != acceptor.StatePolling || a.coord.State() != shutdown.StateRunning {
		writeJSON(ctx, fasthttp.StatusServiceUnavailable, map[string]string{"status": "not ready", "acceptor": st.String()})
		return
	}
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"status":  "ok",
		"version": ver,
		"workers": a.pool.Size(),
		"pending": a.pool.Pending(),
		"busy":    a.pool.Busy(),
	})
}

func (a *App) journalEntries(ctx *fasthttp.RequestCtx) {
	if a.journal == nil {
		writeJSON(ctx, fasthttp.StatusNotFound, map[string]string{"error": "journal disabled"})
		return
	}
	limit := defaultJournalLimit
	if raw := ctx.QueryArgs().Peek("limit"); len(raw) > 0 {
		n, err := strconv.Atoi(string(raw))
		if err != nil || n <= 0 {
			writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxJournalLimit)
	}
	entries, err := a.journal.Recent(limit)
	if err != nil {
		logger.Error("journal_read_failed", "error", err)
		writeJSON(ctx, fasthttp.StatusInternalServerError, map[string]string{"error": "journal unavailable"})
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, entries)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(b)
}

// startAdmin binds addr and serves the admin surface in the background.
func (a *App) startAdmin(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind admin %s: %w", addr, err)
	}
	a.adminLn = ln
	a.admin = &fasthttp.Server{
		Handler:      a.adminHandler(),
		Name:         "tinyhttpd-admin",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	logger.Info("admin_listening", "addr", ln.Addr().String())
	go func() {
		err := a.admin.Serve(ln)
		if err != nil && !a.adminClosing.Load() {
			select {
			case a.adminErr <- err:
			default:
			}
		}
	}()
	return nil
}
