package oracle

import (
	"context"
	"fmt"

	"tokenized_valuation/pkg/core/llm"
)

// Executor runs a prompt for an agent type. *agent.Manager satisfies it.
type Executor interface {
	ExecutePrompt(ctx context.Context, agentType, prompt, systemPrompt string, options map[string]interface{}) (string, error)
}

// LLMGenerator routes each role to the provider configured for its agent key
// and decodes the model's JSON answer.
type LLMGenerator struct {
	exec Executor
}

func NewLLMGenerator(exec Executor) *LLMGenerator {
	return &LLMGenerator{exec: exec}
}

func (g *LLMGenerator) GenerateStructured(ctx context.Context, req Request, out any) error {
	raw, err := g.exec.ExecutePrompt(ctx, AgentKey(req.Role), req.Prompt, req.System, map[string]interface{}{
		llm.OptionJSON: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, req.Role, err)
	}
	return Decode(raw, req.Schema, out)
}
