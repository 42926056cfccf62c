package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"tinyhttpd/pkg/acceptor"
	"tinyhttpd/pkg/config"
	"tinyhttpd/pkg/journal"
)

func testConfig(t *testing.T, journalOn bool) config.EffectiveConfigResult {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>home</h1>"), 0o644))

	off := false
	cfg := &config.Config{}
	cfg.Server.WebRoot = root
	cfg.Server.PollInterval = config.Duration(20 * time.Millisecond)
	workers := 2
	cfg.Pool.Workers = &workers
	cfg.Console.Enabled = &off
	cfg.Journal.Enabled = journalOn
	cfg.Journal.Path = filepath.Join(t.TempDir(), "journal")

	eff := config.EffectiveConfigResult{Config: cfg, Source: "defaults"}
	require.NoError(t, config.ValidateConfig(&eff))
	eff.Addr = "127.0.0.1:0"
	return eff
}

func newTestApp(t *testing.T, journalOn bool) *App {
	t.Helper()
	a, err := New(testConfig(t, journalOn), "test", "none", "unknown")
	require.NoError(t, err)
	a.out = io.Discard
	return a
}

func roundTrip(t *testing.T, addr, raw string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Write([]byte(raw))
	require.NoError(t, err)
	out, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(out)
}

func TestServeAndStop(t *testing.T) {
	a := newTestApp(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(ctx) }()
	addr := a.Addr().String()

	out := roundTrip(t, addr, "GET / HTTP/1.1\r\nHost: x\r\n\r\n")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"), out)
	assert.Contains(t, out, "Content-length: 13\r\n")
	assert.True(t, strings.HasSuffix(out, "\r\n\r\n<h1>home</h1>"))

	out = roundTrip(t, addr, "GET /home HTTP/1.0\r\n\r\n")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.0 404 Not Found\r\n"), out)

	out = roundTrip(t, addr, "POST /form HTTP/1.1\r\n\r\nname=x")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"), out)
	assert.NotContains(t, out, "Content-length")

	out = roundTrip(t, addr, "PATCH / HTTP/1.1\r\n\r\n")
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 400 Bad Request\r\n"), out)

	cancel()
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, acceptor.StateStopped, a.acc.State())
	assert.Equal(t, "signal", a.coord.Source())

	n, err := a.journal.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, a.Shutdown(context.Background()))
	_, err = a.journal.Count()
	assert.ErrorIs(t, err, journal.ErrClosed)

	_, err = net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestStopFromTrigger(t *testing.T) {
	a := newTestApp(t, false)
	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	// Run registers its triggers asynchronously; Stop works either way.
	time.Sleep(50 * time.Millisecond)
	assert.True(t, a.Stop("console"))
	assert.False(t, a.Stop("console"))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.NoError(t, a.Shutdown(context.Background()))
}

func TestShutdownWithoutRun(t *testing.T) {
	a := newTestApp(t, false)
	addr := a.Addr().String()
	require.NoError(t, a.Shutdown(context.Background()))
	require.NoError(t, a.Shutdown(context.Background()))

	assert.Equal(t, acceptor.StateStopped, a.acc.State())
	_, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestNewBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	eff := testConfig(t, false)
	eff.Addr = ln.Addr().String()
	_, err = New(eff, "test", "none", "unknown")
	assert.Error(t, err)
}

func adminGet(a *App, uri string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI(uri)
	a.adminHandler()(&ctx)
	return &ctx
}

func TestAdminHandler(t *testing.T) {
	a := newTestApp(t, true)
	defer a.Shutdown(context.Background())

	ctx := adminGet(a, "/healthz")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"status":"ok"}`, string(ctx.Response.Body()))

	ctx = adminGet(a, "/readyz")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = adminGet(a, "/metrics")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "tinyhttpd_")

	require.NoError(t, a.journal.Record(journal.Entry{Time: time.Now(), RequestLine: "GET / HTTP/1.1", Status: 200}))
	ctx = adminGet(a, "/journal?limit=5")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var entries []journal.Entry
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "GET / HTTP/1.1", entries[0].RequestLine)

	ctx = adminGet(a, "/journal?limit=zero")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = adminGet(a, "/nope")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	a.Stop("test")
	ctx = adminGet(a, "/readyz")
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
}

func TestAdminJournalDisabled(t *testing.T) {
	a := newTestApp(t, false)
	defer a.Shutdown(context.Background())

	ctx := adminGet(a, "/journal")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}
