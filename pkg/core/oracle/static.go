package oracle

import (
	"context"
	"fmt"
)

// StaticGenerator answers from a fixed set of JSON documents keyed by
// AgentKey(role). It backs the offline oracle mode and tests.
type StaticGenerator struct {
	Responses map[string]string
}

func NewStaticGenerator(responses map[string]string) *StaticGenerator {
	normalized := make(map[string]string, len(responses))
	for k, v := range responses {
		normalized[AgentKey(k)] = v
	}
	return &StaticGenerator{Responses: normalized}
}

func (s *StaticGenerator) GenerateStructured(ctx context.Context, req Request, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, ok := s.Responses[AgentKey(req.Role)]
	if !ok {
		return fmt.Errorf("%w: no static response for role %q", ErrUnavailable, req.Role)
	}
	return Decode(raw, req.Schema, out)
}

// FailingGenerator always fails with Err (ErrUnavailable when nil).
type FailingGenerator struct {
	Err error
}

func (f FailingGenerator) GenerateStructured(context.Context, Request, any) error {
	if f.Err != nil {
		return f.Err
	}
	return ErrUnavailable
}
