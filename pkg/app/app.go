// Package app wires configuration into the engines and their transports.
package app

import (
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	configapi "tokenized_valuation/pkg/api/config"
	deviationapi "tokenized_valuation/pkg/api/deviation"
	"tokenized_valuation/pkg/api/mcptools"
	"tokenized_valuation/pkg/api/respond"
	valuationapi "tokenized_valuation/pkg/api/valuation"
	"tokenized_valuation/pkg/core/agent"
	"tokenized_valuation/pkg/core/config"
	"tokenized_valuation/pkg/core/deviation"
	"tokenized_valuation/pkg/core/logger"
	"tokenized_valuation/pkg/core/metrics"
	"tokenized_valuation/pkg/core/oracle"
	"tokenized_valuation/pkg/core/prompt"
	"tokenized_valuation/pkg/core/valuation"
)

// App owns the long-lived components built from one Config.
type App struct {
	Config    *config.Config
	Log       *zap.Logger
	Metrics   *metrics.Metrics
	AgentMgr  *agent.Manager
	Valuation *valuation.Engine
	Deviation *deviation.Engine

	reloader *deviation.ReloadingProvider
}

// New builds every component. Call Close when done.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	log = logger.OrNop(log)
	a := &App{Config: cfg, Log: log}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		a.Metrics = metrics.New(reg)
	}

	a.AgentMgr = agent.NewManager(cfg.LLM, nil, log)

	gen, err := a.generator()
	if err != nil {
		return nil, err
	}
	guard := oracle.NewGuard(gen,
		oracle.WithTimeout(cfg.Oracle.Timeout),
		oracle.WithLogger(log),
		oracle.WithMetrics(a.Metrics),
	)

	valOpts := []valuation.Option{
		valuation.WithLogger(log),
		valuation.WithMetrics(a.Metrics),
		valuation.WithCurrency(cfg.Valuation.Currency),
	}
	if dir := cfg.Valuation.PromptsDir; dir != "" {
		if err := prompt.LoadFromDirectory(dir); err != nil {
			return nil, fmt.Errorf("load prompts from %s: %w", dir, err)
		}
		log.Info("prompt library loaded", zap.String("dir", dir), zap.Int("prompts", prompt.Get().Count()))
		valOpts = append(valOpts, valuation.WithPrompts(prompt.Get()))
	}
	a.Valuation = valuation.NewEngine(guard, valOpts...)

	if a.Deviation, err = a.deviationEngine(); err != nil {
		a.Close()
		return nil, err
	}

	log.Info("app initialised",
		zap.String("oracle_mode", cfg.Oracle.Mode),
		zap.Duration("oracle_timeout", cfg.Oracle.Timeout),
		zap.String("currency", a.Valuation.Currency()),
		zap.String("zero_std_policy", string(a.Deviation.Policy())),
	)
	return a, nil
}

func (a *App) generator() (oracle.Generator, error) {
	switch a.Config.Oracle.Mode {
	case config.OracleModeLLM:
		if a.AgentMgr.GetProviderByName(a.Config.LLM.ActiveProvider) == nil {
			return nil, fmt.Errorf("llm.active_provider %q is not available", a.Config.LLM.ActiveProvider)
		}
		return oracle.NewLLMGenerator(a.AgentMgr), nil
	case config.OracleModeStatic:
		return oracle.NewStaticGenerator(a.Config.Oracle.StaticResponses), nil
	default:
		return oracle.FailingGenerator{}, nil
	}
}

func (a *App) deviationEngine() (*deviation.Engine, error) {
	cfg := a.Config.Deviation
	policy, err := deviation.ParseZeroStdPolicy(cfg.ZeroStdPolicy)
	if err != nil {
		return nil, err
	}

	var provider deviation.BenchmarkProvider
	if cfg.BenchmarksFile != "" {
		rp, err := deviation.NewReloadingProvider(cfg.BenchmarksFile,
			deviation.WithProviderLogger(a.Log),
			deviation.WithProviderMetrics(a.Metrics),
		)
		if err != nil {
			return nil, fmt.Errorf("load benchmarks: %w", err)
		}
		if cfg.ReloadCron != "" {
			if err := rp.Start(cfg.ReloadCron); err != nil {
				return nil, err
			}
		}
		a.reloader = rp
		provider = rp
	}

	return deviation.NewEngine(provider,
		deviation.WithZeroStdPolicy(policy),
		deviation.WithLogger(a.Log),
		deviation.WithMetrics(a.Metrics),
	), nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	valuationapi.NewHandler(a.Valuation, a.Log).Register(mux)
	deviationapi.NewHandler(a.Deviation, a.Log).Register(mux)
	configapi.NewHandler(a.AgentMgr, a.Log).Register(mux)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if a.Metrics != nil {
		mux.Handle("/metrics", a.Metrics.Handler())
	}
	return mux
}

// MCPServer returns an MCP server over the same engines.
func (a *App) MCPServer(version string) *server.MCPServer {
	return mcptools.NewServer(&mcptools.Tools{Valuation: a.Valuation, Deviation: a.Deviation}, version)
}

// Close stops background work.
func (a *App) Close() {
	if a.reloader != nil {
		a.reloader.Stop()
	}
}
