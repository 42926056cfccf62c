package console

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fireRecorder struct {
	mu      sync.Mutex
	sources []string
}

func (f *fireRecorder) fire(source string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, source)
	return len(f.sources) == 1
}

func (f *fireRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sources)
}

func TestIsStop(t *testing.T) {
	cases := map[string]bool{
		"exit":        true,
		"EXIT":        true,
		"Exit now":    true,
		"exiting":     true,
		"exit\r":      true,
		"exit \t":     true,
		"  exit":      false,
		"\texit":      false,
		"quit":        false,
		"":            false,
		"ex":          false,
		"please exit": false,
	}
	for line, want := range cases {
		assert.Equal(t, want, IsStop(line), "line %q", line)
	}
}

func TestRunFiresOnExit(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("hello\n\nExit\nexit\n"), &out, "> ", true)
	rec := &fireRecorder{}
	stop := make(chan struct{})

	c.Run(stop, rec.fire)

	assert.Equal(t, []string{"console"}, rec.sources)
	assert.Equal(t, "> > > ", out.String())
}

func TestRunNoPromptWhenNotInteractive(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("exit\n"), &out, "> ", false)
	rec := &fireRecorder{}

	c.Run(make(chan struct{}), rec.fire)

	assert.Equal(t, 1, rec.count())
	assert.Empty(t, out.String())
}

func TestRunEOFDoesNotFire(t *testing.T) {
	c := New(strings.NewReader("status\nhelp\n"), nil, "", false)
	rec := &fireRecorder{}

	c.Run(make(chan struct{}), rec.fire)

	assert.Equal(t, 0, rec.count())
}

func TestRunReturnsOnStop(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	c := New(pr, nil, "", false)
	rec := &fireRecorder{}
	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		c.Run(stop, rec.fire)
		close(done)
	}()
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("console did not return after stop")
	}
	assert.Equal(t, 0, rec.count())
}
