package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyhttpd/pkg/state/logger"
)

func TestNewRejectsBadCron(t *testing.T) {
	_, err := New("sometimes", func() Snapshot { return Snapshot{} })
	assert.Error(t, err)

	_, err = New("* * * * *", nil)
	assert.Error(t, err)

	cancel, err := Start(context.Background(), "not cron", func() Snapshot { return Snapshot{} })
	assert.Error(t, err)
	cancel()
}

func TestReportDeltas(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter("info", &buf)
	defer func() { logger.Log = nil }()

	snap := Snapshot{Served: 1200, Errors: 3, Pending: 2, Busy: 1}
	r, err := New("*/5 * * * *", func() Snapshot { return snap })
	require.NoError(t, err)

	base := r.lastAt
	d := r.Report(base.Add(5 * time.Minute))
	assert.Equal(t, uint64(1200), d.Served)
	assert.Equal(t, uint64(3), d.Errors)
	assert.Equal(t, 5*time.Minute, d.Interval)
	assert.Contains(t, buf.String(), "traffic_report")
	assert.Contains(t, buf.String(), "served=1,200")

	snap.Served = 1500
	d = r.Report(base.Add(10 * time.Minute))
	assert.Equal(t, uint64(300), d.Served)
	assert.Equal(t, uint64(0), d.Errors)

	// a source that went backwards reports its current value
	snap.Served = 10
	d = r.Report(base.Add(15 * time.Minute))
	assert.Equal(t, uint64(10), d.Served)
}

func TestStartStops(t *testing.T) {
	cancel, err := Start(context.Background(), "* * * * *", func() Snapshot { return Snapshot{} })
	require.NoError(t, err)
	cancel()
}
