// Package oracle is the boundary to the external service that supplies
// valuation assumptions and investor narratives as structured JSON.
//
// Callers never see oracle failures: Structured converts every error,
// timeout, panic or empty answer into the caller's fallback value.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"tokenized_valuation/pkg/core/utils"
)

var (
	ErrUnavailable = errors.New("oracle unavailable")
	ErrMalformed   = errors.New("oracle returned malformed output")
	ErrEmpty       = errors.New("oracle returned an empty result")
)

// Request is one structured-generation call.
type Request struct {
	Role   string // e.g. "Senior Appraiser"
	System string
	Prompt string
	Schema string // JSON Schema the answer must satisfy; empty skips validation
}

// Generator produces a JSON document for req and decodes it into out.
type Generator interface {
	GenerateStructured(ctx context.Context, req Request, out any) error
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request, out any) error

func (f GeneratorFunc) GenerateStructured(ctx context.Context, req Request, out any) error {
	return f(ctx, req, out)
}

// AgentKey maps a role label to its agent configuration key:
// "Senior Appraiser" -> "senior_appraiser".
func AgentKey(role string) string {
	return strings.Join(strings.Fields(strings.ToLower(role)), "_")
}

// Decode parses raw model output into out. Fenced or slightly broken JSON is
// repaired first; the result is then checked against schema when given.
func Decode(raw, schema string, out any) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmpty
	}

	var generic any
	text, err := utils.SmartParse(raw, &generic)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if generic == nil {
		return ErrEmpty
	}

	if schema != "" {
		result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewStringLoader(text))
		if err != nil {
			return fmt.Errorf("%w: schema check: %v", ErrMalformed, err)
		}
		if !result.Valid() {
			problems := make([]string, 0, len(result.Errors()))
			for _, e := range result.Errors() {
				problems = append(problems, e.String())
			}
			return fmt.Errorf("%w: %s", ErrMalformed, strings.Join(problems, "; "))
		}
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
