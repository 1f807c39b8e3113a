// Package runnertool exposes a spec.Runner as llmtools-go tools, so a model
// can repair and run scripts through function calls.
package runnertool

import (
	"context"
	"errors"

	"github.com/flexigpt/llmtools-go"
	llmtoolsgoSpec "github.com/flexigpt/llmtools-go/spec"

	"github.com/flexigpt/coderunner-go/spec"
)

// Register registers the code.run and code.fix tools into an existing llmtools-go Registry.
func Register(r *llmtools.Registry, rn spec.Runner) error {
	if r == nil {
		return errors.New("nil registry")
	}
	if rn == nil {
		return errors.New("nil runner")
	}

	// "code.run" -> typed -> text output (JSON).
	if err := llmtools.RegisterTypedAsTextTool[spec.RunArgs, spec.RunResult](
		r,
		spec.CodeRunTool(),
		func(ctx context.Context, args spec.RunArgs) (spec.RunResult, error) {
			return rn.Run(ctx, args)
		},
	); err != nil {
		return err
	}

	// "code.fix" -> typed -> text output (JSON).
	if err := llmtools.RegisterTypedAsTextTool[spec.FixArgs, spec.FixResult](
		r,
		spec.CodeFixTool(),
		func(ctx context.Context, args spec.FixArgs) (spec.FixResult, error) {
			return rn.Fix(ctx, args)
		},
	); err != nil {
		return err
	}

	return nil
}

func Tools() []llmtoolsgoSpec.Tool {
	return []llmtoolsgoSpec.Tool{
		spec.CodeRunTool(),
		spec.CodeFixTool(),
	}
}
