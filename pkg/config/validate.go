package config

import (
	"fmt"
	"strings"

	"github.com/adhocore/gronx"
)

// set defaults, fail fast on invalid values
func ValidateConfig(eff *EffectiveConfigResult) error {
	if eff == nil || eff.Config == nil {
		return fmt.Errorf("effective config is nil")
	}
	c := eff.Config
	c.applyDefaults()
	eff.Addr = c.Addr()

	if n := c.Pool.Size(); n <= 0 {
		return fmt.Errorf("pool.workers must be > 0, got %d", n)
	}
	if p := *c.Server.Port; p < 0 || p > 65535 {
		return fmt.Errorf("server.port out of range: %d", p)
	}
	if strings.TrimSpace(c.Server.WebRoot) == "" {
		return fmt.Errorf("server.web_root is empty")
	}
	if n := c.Server.ReadBufferSize.Int64(); n < minReadBufferSize || n > maxReadBufferSize {
		return fmt.Errorf("server.read_buffer_size must be between %d and %d bytes, got %d", minReadBufferSize, maxReadBufferSize, n)
	}
	if c.Server.PollInterval.Duration() <= 0 {
		return fmt.Errorf("server.poll_interval must be positive")
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port)
	}
	if c.Metrics.Enabled && c.MetricsAddr() == eff.Addr {
		return fmt.Errorf("metrics address %s collides with the server address", eff.Addr)
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return fmt.Errorf("journal enabled but journal.path is empty")
	}
	if c.Report.Enabled && !gronx.New().IsValid(c.Report.Cron) {
		return fmt.Errorf("invalid report.cron: %q is not a valid cron expression", c.Report.Cron)
	}
	return nil
}

// fills unset values; explicit worker counts and ports are left for validation
func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == nil {
		port := defaultPort
		c.Server.Port = &port
	}
	if c.Server.WebRoot == "" {
		c.Server.WebRoot = defaultWebRoot
	}
	if c.Server.Index == "" {
		c.Server.Index = defaultIndex
	}
	if c.Server.ReadBufferSize == 0 {
		c.Server.ReadBufferSize = defaultReadBufferSize
	}
	if c.Server.PollInterval == 0 {
		c.Server.PollInterval = Duration(defaultPollInterval)
	}
	if c.Pool.Workers == nil {
		n := defaultWorkers
		c.Pool.Workers = &n
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = defaultMetricsAddress
	}
	if c.Metrics.Port == 0 {
		c.Metrics.Port = defaultMetricsPort
	}
	if c.Journal.Path == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Report.Cron == "" {
		c.Report.Cron = defaultReportCron
	}
	if c.Console.Enabled == nil {
		on := true
		c.Console.Enabled = &on
	}
	if c.Console.Prompt == "" {
		c.Console.Prompt = defaultPrompt
	}
}
