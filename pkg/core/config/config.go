// Package config loads service configuration from defaults, an optional YAML
// file and VALUATION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tokenized_valuation/pkg/core/agent"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Oracle modes.
const (
	OracleModeLLM    = "llm"
	OracleModeStatic = "static"
	OracleModeOff    = "off"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	LLM       agent.Config    `mapstructure:"llm"`
	Valuation ValuationConfig `mapstructure:"valuation"`
	Deviation DeviationConfig `mapstructure:"deviation"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OracleConfig selects the assumption/narrative oracle wired into the
// valuation engine. "static" serves the documents in StaticResponses keyed by
// role; "off" makes every call fall back.
type OracleConfig struct {
	Mode            string            `mapstructure:"mode"`
	Timeout         time.Duration     `mapstructure:"timeout"`
	StaticResponses map[string]string `mapstructure:"static_responses"`
}

// ValuationConfig sets the reporting currency. PromptsDir, when set, replaces
// the embedded prompt library with prompts/ and schemas/ read from disk.
type ValuationConfig struct {
	Currency   string `mapstructure:"currency"`
	PromptsDir string `mapstructure:"prompts_dir"`
}

// DeviationConfig points at an optional benchmark YAML file. When ReloadCron
// is set the file is re-read on that schedule.
type DeviationConfig struct {
	BenchmarksFile string `mapstructure:"benchmarks_file"`
	ReloadCron     string `mapstructure:"reload_cron"`
	ZeroStdPolicy  string `mapstructure:"zero_std_policy"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Validate checks enumerated values and required fields.
func (c *Config) Validate() error {
	var problems []string

	switch c.Oracle.Mode {
	case OracleModeLLM, OracleModeStatic, OracleModeOff:
	default:
		problems = append(problems, fmt.Sprintf("oracle.mode %q (want llm, static or off)", c.Oracle.Mode))
	}
	if c.Oracle.Timeout <= 0 {
		problems = append(problems, "oracle.timeout must be positive")
	}
	if len(c.Valuation.Currency) != 3 {
		problems = append(problems, fmt.Sprintf("valuation.currency %q is not an ISO 4217 code", c.Valuation.Currency))
	}
	switch c.Deviation.ZeroStdPolicy {
	case "saturate", "exclude", "strict":
	default:
		problems = append(problems, fmt.Sprintf("deviation.zero_std_policy %q (want saturate, exclude or strict)", c.Deviation.ZeroStdPolicy))
	}
	if c.Deviation.ReloadCron != "" && c.Deviation.BenchmarksFile == "" {
		problems = append(problems, "deviation.reload_cron requires deviation.benchmarks_file")
	}
	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
