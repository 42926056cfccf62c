package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var Log *slog.Logger

var (
	outMu sync.Mutex
	out   io.Writer = os.Stdout
)

// ParseLevel maps a config level string onto a slog level. Unknown values
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Init(level string) {
	InitWithWriter(level, os.Stdout)
}

// InitWithWriter installs a text logger writing to w.
func InitWithWriter(level string, w io.Writer) {
	outMu.Lock()
	out = w
	outMu.Unlock()
	Log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Sync flushes the output when it supports it.
func Sync() {
	outMu.Lock()
	defer outMu.Unlock()
	if f, ok := out.(interface{ Sync() error }); ok {
		_ = f.Sync()
	}
}

func Debug(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Error(msg, args...)
}

// LogConfigSummary prints a plain block to the log output without slog
// prefixes, used for startup summaries.
func LogConfigSummary(title string, items []string) {
	if len(items) == 0 {
		return
	}
	header := "== " + strings.ReplaceAll(title, "_", " ") + " "
	const width = 60
	if len(header) < width {
		header += strings.Repeat("=", width-len(header))
	}
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintln(out, header)
	for _, it := range items {
		fmt.Fprintln(out, "- "+it)
	}
	fmt.Fprintln(out)
}
