// Package console reads operator commands from a line-oriented input.
// A line starting with "exit" (any case) requests shutdown; everything else
// is ignored.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/term"

	"tinyhttpd/pkg/state/logger"
)

const stopCommand = "exit"

type Console struct {
	in          io.Reader
	out         io.Writer
	prompt      string
	interactive bool
}

// New returns a console over in. The prompt is written to out before each
// line only when interactive is true.
func New(in io.Reader, out io.Writer, prompt string, interactive bool) *Console {
	if out == nil {
		out = io.Discard
	}
	return &Console{in: in, out: out, prompt: prompt, interactive: interactive}
}

// Stdio returns a console on the process stdin, prompting only when stdin
// is a terminal.
func Stdio(prompt string) *Console {
	return New(os.Stdin, os.Stdout, prompt, term.IsTerminal(int(os.Stdin.Fd())))
}

// IsStop reports whether line is a stop command. Leading whitespace is
// significant; a trailing "\r" or blanks are not.
func IsStop(line string) bool {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	return len(line) >= len(stopCommand) && strings.EqualFold(line[:len(stopCommand)], stopCommand)
}

// Run watches the input until a stop command arrives, the input ends or
// stop is closed. Its signature matches shutdown.Trigger.
//
// The reader goroutine may stay blocked in Read after Run returns; it holds
// no locks and exits with the process.
func (c *Console) Run(stop <-chan struct{}, fire func(source string) bool) {
	lines := make(chan string)
	go c.pump(lines, stop)

	for {
		if c.interactive {
			fmt.Fprint(c.out, c.prompt)
		}
		select {
		case <-stop:
			return
		case line, ok := <-lines:
			if !ok {
				logger.Info("console_closed", "msg", "input ended, console disabled")
				return
			}
			if IsStop(line) {
				logger.Info("console_stop", "command", strings.TrimSpace(line))
				fire("console")
				return
			}
			if strings.TrimSpace(line) != "" {
				logger.Debug("console_ignored", "line", line)
			}
		}
	}
}

func (c *Console) pump(lines chan<- string, stop <-chan struct{}) {
	defer close(lines)
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-stop:
			return
		}
	}
	if err := sc.Err(); err != nil {
		logger.Warn("console_read_failed", "error", err)
	}
}
