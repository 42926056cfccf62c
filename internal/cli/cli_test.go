package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vegeta "github.com/tsenart/vegeta/lib"

	"tinyhttpd/pkg/journal"
)

func TestPrintEntries(t *testing.T) {
	now := time.Date(2024, 5, 17, 6, 30, 0, 0, time.UTC)
	entries := []journal.Entry{
		{Time: now.Add(-2 * time.Minute), Remote: "127.0.0.1:5000", RequestLine: "GET / HTTP/1.1", Status: 200, Bytes: 2048, Duration: 350 * time.Microsecond},
		{Time: now.Add(-3 * time.Hour), Remote: "127.0.0.1:5001", RequestLine: "PATCH / HTTP/1.1", Status: 400, Bytes: 120},
	}

	var buf bytes.Buffer
	require.NoError(t, printEntries(&buf, entries, 1234, now))
	out := buf.String()

	assert.Contains(t, out, "WHEN")
	assert.Contains(t, out, "2 minutes ago")
	assert.Contains(t, out, "3 hours ago")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "GET / HTTP/1.1")
	assert.Contains(t, out, "showing 2 of 1,234 entries")

	buf.Reset()
	require.NoError(t, printEntries(&buf, nil, 0, now))
	assert.Equal(t, "journal is empty\n", buf.String())
}

func TestPrintBench(t *testing.T) {
	m := &vegeta.Metrics{
		Requests:    10,
		Success:     0.9,
		StatusCodes: map[string]int{"200": 9, "0": 1},
		Errors:      []string{"connection refused"},
	}
	m.Latencies.Mean = 2 * time.Millisecond

	var buf bytes.Buffer
	require.NoError(t, printBench(&buf, m))
	out := buf.String()
	assert.Contains(t, out, "requests:    10")
	assert.Contains(t, out, "success:     90.00%")
	assert.Contains(t, out, "status:      0:1 200:9")
	assert.Contains(t, out, "connection refused")
}

func TestConfigCommand(t *testing.T) {
	for _, k := range []string{"CONFIG", "WORKERS", "SERVER_ADDR", "WEB_ROOT"} {
		t.Setenv("TINYHTTPD_"+k, "")
	}
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("server:\n  web_root: public\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "-c", p, "--workers", "3"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "# sources: defaults+config+flags\n"), s)
	assert.Contains(t, s, "workers: 3")
	assert.Contains(t, s, "web_root: public")
}
