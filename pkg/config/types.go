package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Pool    PoolConfig    `yaml:"pool"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Journal JournalConfig `yaml:"journal"`
	Report  ReportConfig  `yaml:"report"`
	Console ConsoleConfig `yaml:"console"`
}

// ServerConfig holds listener and file serving settings.
type ServerConfig struct {
	Address string `yaml:"address"`
	// Port defaults to 50000 when unset. An explicit 0 asks the OS for a
	// free port.
	Port    *int   `yaml:"port"`
	WebRoot string `yaml:"web_root"`
	Index   string `yaml:"index"`
	// ReadBufferSize is the single read performed per connection. Requests
	// larger than this are truncated.
	ReadBufferSize SizeBytes `yaml:"read_buffer_size"`
	PollInterval   Duration  `yaml:"poll_interval"`
}

// PoolConfig sizes the worker pool. The size is fixed for the process lifetime.
type PoolConfig struct {
	// Workers defaults to 8 when unset. An explicit 0 fails validation.
	Workers *int `yaml:"workers"`
}

// Size is the configured worker count, 0 when unset.
func (p PoolConfig) Size() int {
	if p.Workers == nil {
		return 0
	}
	return *p.Workers
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig controls the admin HTTP surface (metrics and health).
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// JournalConfig controls the on-disk request journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ReportConfig schedules the periodic traffic report.
type ReportConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// ConsoleConfig controls the operator console on stdin.
type ConsoleConfig struct {
	// Enabled defaults to true when unset.
	Enabled *bool  `yaml:"enabled"`
	Prompt  string `yaml:"prompt"`
}

func (c ConsoleConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// SizeBytes represents a number of bytes, unmarshaled from human-friendly strings like "512B" or plain integers.
type SizeBytes int64

func (s *SizeBytes) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*s = 0
		return nil
	}
	v, err := ParseSizeBytes(node.Value)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s SizeBytes) MarshalYAML() (interface{}, error) {
	return humanize.IBytes(uint64(s)), nil
}

func (s SizeBytes) Int64() int64 { return int64(s) }

func (s SizeBytes) Int() int { return int(s) }

// ParseSizeBytes accepts "64KiB", "512B" or a plain byte count.
func ParseSizeBytes(raw string) (SizeBytes, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return SizeBytes(i), nil
	}
	if v, err := humanize.ParseBytes(raw); err == nil {
		return SizeBytes(v), nil
	}
	return 0, fmt.Errorf("invalid size value: %q", raw)
}

// Duration is a wrapper around time.Duration that supports YAML parsing from strings like "100ms" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	v, err := ParseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

// ParseDuration accepts Go duration strings or numeric seconds.
func ParseDuration(raw string) (Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		return Duration(td), nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Duration(time.Duration(f * float64(time.Second))), nil
	}
	return 0, fmt.Errorf("invalid duration value: %q", raw)
}
