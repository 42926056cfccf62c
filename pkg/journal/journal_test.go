package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	j, err := Open(dir)
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(Entry{
			Time:        base.Add(time.Duration(i) * time.Second),
			RequestLine: "GET /" + string(rune('a'+i)) + " HTTP/1.1",
			Status:      200,
		}))
	}

	got, err := j.Recent(3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "GET /e HTTP/1.1", got[0].RequestLine)
	assert.Equal(t, "GET /d HTTP/1.1", got[1].RequestLine)
	assert.Equal(t, "GET /c HTTP/1.1", got[2].RequestLine)

	n, err := j.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, j.Close())
	require.NoError(t, j.Close())
	assert.ErrorIs(t, j.Record(Entry{}), ErrClosed)
	_, err = j.Recent(1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSameTimestampKeepsBoth(t *testing.T) {
	j, err := Open(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	now := time.Now().UTC()
	require.NoError(t, j.Record(Entry{Time: now, RequestLine: "first"}))
	require.NoError(t, j.Record(Entry{Time: now, RequestLine: "second"}))

	got, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].RequestLine)
}

func TestReopenReadOnly(t *testing.T) {
	dir := t.TempDir()
	j, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, j.Record(Entry{RequestLine: "POST / HTTP/1.1", Status: 200}))
	require.NoError(t, j.Close())

	ro, err := OpenReadOnly(dir)
	require.NoError(t, err)
	defer ro.Close()
	got, err := ro.Recent(5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 200, got[0].Status)
	assert.False(t, got[0].Time.IsZero())
}
