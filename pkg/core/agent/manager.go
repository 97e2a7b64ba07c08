package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"tokenized_valuation/pkg/core/llm"
)

type Config struct {
	ActiveProvider string                        `yaml:"active_provider" mapstructure:"active_provider"`
	Agents         map[string]AgentConfig        `yaml:"agents" mapstructure:"agents"`
	Providers      map[string]llm.ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"` // Optional override
	Description string `yaml:"description" mapstructure:"description"`
}

// Manager routes agent types (e.g. "senior_appraiser") to LLM providers.
type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
	log       *zap.Logger
}

// NewManager wires config to providers. A nil providers map builds every
// known provider from config.Providers.
func NewManager(config Config, providers map[string]llm.Provider, log *zap.Logger) *Manager {
	if providers == nil {
		providers = llm.NewProviders(config.Providers)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		config:    config,
		providers: providers,
		log:       log.Named("agent"),
	}
}

func (m *Manager) GetProvider(agentType string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 1. Check for agent-specific override
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return p
		}
	}

	// 2. Use global active provider
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return nil
}

// GetProviderByName retrieves a provider instance by its specific name (e.g. "deepseek", "gemini")
func (m *Manager) GetProviderByName(name string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.providers[name]
	if !ok {
		m.log.Debug("provider not found", zap.String("provider", name))
		return nil
	}
	return p
}

// ExecutePrompt handles instruction adaptation before sending to the model
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(agentType)
	if provider == nil {
		return "", fmt.Errorf("no provider configured for agent %q (active %q)", agentType, m.GetActiveProvider())
	}

	m.log.Debug("execute prompt",
		zap.String("agent", agentType),
		zap.String("active_provider", m.GetActiveProvider()),
		zap.String("provider_type", fmt.Sprintf("%T", provider)),
	)

	// Adapt instructions based on the model's specialized "teaching" style
	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)

	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, options)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	m.log.Info("global provider set", zap.String("provider", newProvider))
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// Available lists the registered provider names.
func (m *Manager) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
