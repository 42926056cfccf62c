package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddress        = "127.0.0.1"
	defaultPort           = 50000
	defaultWebRoot        = "www"
	defaultIndex          = "index.html"
	defaultReadBufferSize = 512
	defaultPollInterval   = 100 * time.Millisecond
	defaultWorkers        = 8
	defaultLogLevel       = "info"
	defaultMetricsAddress = "127.0.0.1"
	defaultMetricsPort    = 50001
	defaultJournalPath    = "./.journal"
	defaultReportCron     = "*/5 * * * *"
	defaultPrompt         = "> "
	defaultConfigPath     = "./config.yaml"

	minReadBufferSize = 64
	maxReadBufferSize = 64 * 1024
)

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = defaultAddress
	}
	port := defaultPort
	if c.Server.Port != nil {
		port = *c.Server.Port
	}
	return net.JoinHostPort(addr, strconv.Itoa(port))
}

// MetricsAddr returns the admin listen address as host:port.
func (c *Config) MetricsAddr() string {
	addr := c.Metrics.Address
	if addr == "" {
		addr = defaultMetricsAddress
	}
	port := c.Metrics.Port
	if port == 0 {
		port = defaultMetricsPort
	}
	return net.JoinHostPort(addr, strconv.Itoa(port))
}

// LoadConfigFile reads and parses a config file.
func LoadConfigFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s: %w", path, err)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveConfigPath returns the config file path, preferring flag, then env.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet && flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(envPrefix + "CONFIG"); p != "" {
		return p
	}
	if flagPath != "" {
		return flagPath
	}
	return defaultConfigPath
}
