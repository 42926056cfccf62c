package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"tinyhttpd/pkg/state/logger"
)

var ErrClosed = errors.New("journal closed")

const keyPrefix = "req:"

// Entry describes one served connection.
type Entry struct {
	Time        time.Time     `json:"time"`
	Remote      string        `json:"remote"`
	RequestLine string        `json:"request_line"`
	Status      int           `json:"status"`
	Bytes       int           `json:"bytes"`
	Duration    time.Duration `json:"duration_ns"`
}

// Journal is an append-only request log kept in pebble. Keys sort by time
// so the newest entries are at the end of the keyspace.
type Journal struct {
	mu     sync.RWMutex
	db     *pebble.DB
	path   string
	seq    atomic.Uint64
	ro     bool
	closed bool
}

func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("journal_open_failed", "path", path, "error", err)
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	logger.Info("journal_opened", "path", path)
	return &Journal{db: db, path: path}, nil
}

// OpenReadOnly opens an existing journal for inspection.
func OpenReadOnly(path string) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Journal{db: db, path: path, ro: true}, nil
}

func (j *Journal) Path() string { return j.path }

func entryKey(t time.Time, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d:%010d", keyPrefix, t.UnixNano(), seq))
}

// Record appends e without waiting for an fsync.
func (j *Journal) Record(e Entry) error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrClosed
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return j.db.Set(entryKey(e.Time, j.seq.Add(1)), val, pebble.NoSync)
}

func (j *Journal) iter() (*pebble.Iterator, error) {
	return j.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte("req;"),
	})
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, ErrClosed
	}
	it, err := j.iter()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	out := make([]Entry, 0, limit)
	for it.Last(); it.Valid() && len(out) < limit; it.Prev() {
		var e Entry
		if err := json.Unmarshal(it.Value(), &e); err != nil {
			logger.Warn("journal_entry_corrupt", "key", string(it.Key()), "error", err)
			continue
		}
		out = append(out, e)
	}
	return out, it.Error()
}

// Count walks the keyspace and returns the number of entries.
func (j *Journal) Count() (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return 0, ErrClosed
	}
	it, err := j.iter()
	if err != nil {
		return 0, err
	}
	defer it.Close()
	n := 0
	for it.First(); it.Valid(); it.Next() {
		n++
	}
	return n, it.Error()
}

// Close flushes and closes the store. It is safe to call more than once.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	if !j.ro {
		if err := j.db.Flush(); err != nil {
			logger.Warn("journal_flush_failed", "error", err)
		}
	}
	return j.db.Close()
}
