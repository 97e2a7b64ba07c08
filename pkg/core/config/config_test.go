package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, OracleModeOff, cfg.Oracle.Mode)
	assert.Equal(t, 30*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, "USD", cfg.Valuation.Currency)
	assert.Equal(t, "saturate", cfg.Deviation.ZeroStdPolicy)
	assert.Equal(t, "gemini", cfg.LLM.ActiveProvider)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
oracle:
  mode: llm
  timeout: 5s
llm:
  active_provider: deepseek
  agents:
    senior_appraiser:
      provider: qwen
  providers:
    deepseek:
      model: deepseek-chat
valuation:
  currency: eur
deviation:
  benchmarks_file: /etc/benchmarks.yaml
  reload_cron: "@every 1h"
  zero_std_policy: exclude
`)
	t.Setenv("VALUATION_SERVER_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, OracleModeLLM, cfg.Oracle.Mode)
	assert.Equal(t, 5*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, "deepseek", cfg.LLM.ActiveProvider)
	assert.Equal(t, "qwen", cfg.LLM.Agents["senior_appraiser"].Provider)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Providers["deepseek"].Model)
	assert.Equal(t, "EUR", cfg.Valuation.Currency)
	assert.Equal(t, "exclude", cfg.Deviation.ZeroStdPolicy)
	assert.Equal(t, "@every 1h", cfg.Deviation.ReloadCron)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, `
oracle:
  mode: magic
deviation:
  zero_std_policy: ignore
  reload_cron: "@hourly"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "oracle.mode")
	assert.Contains(t, err.Error(), "zero_std_policy")
	assert.Contains(t, err.Error(), "reload_cron")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
