package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
)

const envPrefix = "TINYHTTPD_"

// holds parsed command-line flag values and which were set
type Flags struct {
	Config    string
	Addr      string
	WebRoot   string
	Workers   int
	LogLevel  string
	NoConsole bool
	Set       map[string]bool
}

// holds the result of LoadEffectiveConfig
type EffectiveConfigResult struct {
	Config *Config
	Addr   string
	Path   string // config file actually read, "" when none
	Source string // contributing layers, e.g. "defaults+config+env"
}

// loads config from file, returns config, found bool, and error. a missing
// file is only an error when the path was asked for explicitly.
func ParseConfigFile(flags Flags) (*Config, string, bool, error) {
	explicit := flags.Set["config"] || os.Getenv(envPrefix+"CONFIG") != ""
	cfgPath := ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, err := LoadConfigFile(cfgPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return &Config{}, "", false, nil
		}
		return nil, cfgPath, false, err
	}
	return cfg, cfgPath, true, nil
}

// ParseConfigEnvs overlays TINYHTTPD_* variables onto cfg and reports
// whether any was set.
func ParseConfigEnvs(cfg *Config, lookup func(string) (string, bool)) (bool, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	used := false
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		v = strings.TrimSpace(v)
		if ok && v != "" {
			used = true
			return v, true
		}
		return "", false
	}

	if v, ok := get("SERVER_ADDR"); ok {
		host, port, err := splitAddr(v)
		if err != nil {
			return used, fmt.Errorf("%sSERVER_ADDR: %w", envPrefix, err)
		}
		cfg.Server.Address, cfg.Server.Port = host, &port
	}
	if v, ok := get("SERVER_ADDRESS"); ok {
		cfg.Server.Address = v
	}
	if v, ok := get("SERVER_PORT"); ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			return used, fmt.Errorf("%sSERVER_PORT: %w", envPrefix, err)
		}
		cfg.Server.Port = &p
	}
	if v, ok := get("WEB_ROOT"); ok {
		cfg.Server.WebRoot = v
	}
	if v, ok := get("INDEX"); ok {
		cfg.Server.Index = v
	}
	if v, ok := get("READ_BUFFER_SIZE"); ok {
		s, err := ParseSizeBytes(v)
		if err != nil {
			return used, fmt.Errorf("%sREAD_BUFFER_SIZE: %w", envPrefix, err)
		}
		cfg.Server.ReadBufferSize = s
	}
	if v, ok := get("POLL_INTERVAL"); ok {
		d, err := ParseDuration(v)
		if err != nil {
			return used, fmt.Errorf("%sPOLL_INTERVAL: %w", envPrefix, err)
		}
		cfg.Server.PollInterval = d
	}
	if v, ok := get("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return used, fmt.Errorf("%sWORKERS: %w", envPrefix, err)
		}
		cfg.Pool.Workers = &n
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := get("METRICS_ENABLED"); ok {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v, ok := get("METRICS_ADDR"); ok {
		host, port, err := splitAddr(v)
		if err != nil {
			return used, fmt.Errorf("%sMETRICS_ADDR: %w", envPrefix, err)
		}
		cfg.Metrics.Address, cfg.Metrics.Port = host, port
	}
	if v, ok := get("JOURNAL_ENABLED"); ok {
		cfg.Journal.Enabled = parseBool(v)
	}
	if v, ok := get("JOURNAL_PATH"); ok {
		cfg.Journal.Path = v
	}
	if v, ok := get("REPORT_ENABLED"); ok {
		cfg.Report.Enabled = parseBool(v)
	}
	if v, ok := get("REPORT_CRON"); ok {
		cfg.Report.Cron = v
	}
	if v, ok := get("CONSOLE_ENABLED"); ok {
		b := parseBool(v)
		cfg.Console.Enabled = &b
	}
	return used, nil
}

// ApplyFlags overlays explicitly set flags onto cfg and reports whether any
// was applied.
func ApplyFlags(cfg *Config, flags Flags) (bool, error) {
	used := false
	if flags.Set["addr"] {
		host, port, err := splitAddr(flags.Addr)
		if err != nil {
			return false, fmt.Errorf("--addr: %w", err)
		}
		cfg.Server.Address, cfg.Server.Port = host, &port
		used = true
	}
	if flags.Set["webroot"] {
		cfg.Server.WebRoot = flags.WebRoot
		used = true
	}
	if flags.Set["workers"] {
		n := flags.Workers
		cfg.Pool.Workers = &n
		used = true
	}
	if flags.Set["log-level"] {
		cfg.Logging.Level = flags.LogLevel
		used = true
	}
	if flags.Set["no-console"] && flags.NoConsole {
		off := false
		cfg.Console.Enabled = &off
		used = true
	}
	return used, nil
}

// LoadEffectiveConfig layers defaults, the config file, the environment and
// explicitly set flags, in increasing precedence. Defaults for fields left
// unset are filled by ValidateConfig.
func LoadEffectiveConfig(flags Flags) (EffectiveConfigResult, error) {
	var res EffectiveConfigResult
	sources := []string{"defaults"}

	cfg, path, found, err := ParseConfigFile(flags)
	if err != nil {
		return res, err
	}
	if found {
		sources = append(sources, "config")
		res.Path = path
	}

	envUsed, err := ParseConfigEnvs(cfg, nil)
	if err != nil {
		return res, err
	}
	if envUsed {
		sources = append(sources, "env")
	}

	flagsUsed, err := ApplyFlags(cfg, flags)
	if err != nil {
		return res, err
	}
	if flagsUsed {
		sources = append(sources, "flags")
	}

	res.Config = cfg
	res.Addr = cfg.Addr()
	res.Source = strings.Join(sources, "+")
	return res, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// splits host:port; a bare ":port" keeps the host empty
func splitAddr(a string) (string, int, error) {
	host, p, err := net.SplitHostPort(strings.TrimSpace(a))
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q", p)
	}
	return host, port, nil
}
