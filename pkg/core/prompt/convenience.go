package prompt

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed resources
var resources embed.FS

// PromptIDs contains all known prompt identifiers
var PromptIDs = struct {
	ValuationAssumptions string
	ValuationNarrative   string
}{
	ValuationAssumptions: "valuation.assumptions",
	ValuationNarrative:   "valuation.narrative",
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns a registry populated from the embedded prompt library.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(resources, "resources")
		if err != nil {
			defaultErr = err
			return
		}
		r := NewRegistry()
		if err := r.LoadFromFS(sub); err != nil {
			defaultErr = err
			return
		}
		defaultReg = r
	})
	return defaultReg, defaultErr
}

// MustDefault is like Default but panics on error. The embedded library is
// part of the binary, so a failure here is a build defect.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}
	return r
}
