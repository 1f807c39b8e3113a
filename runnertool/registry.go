package runnertool

import (
	"errors"

	"github.com/flexigpt/llmtools-go"

	"github.com/flexigpt/coderunner-go/spec"
)

// NewRegistry creates an llmtools-go Registry and registers ONLY the runner tools into it.
func NewRegistry(rn spec.Runner, opts ...llmtools.RegistryOption) (*llmtools.Registry, error) {
	if rn == nil {
		return nil, errors.New("nil runner")
	}
	r, err := llmtools.NewRegistry(opts...)
	if err != nil {
		return nil, err
	}
	if err := Register(r, rn); err != nil {
		return nil, err
	}
	return r, nil
}
