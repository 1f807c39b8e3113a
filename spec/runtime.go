package spec

import "context"

// Runner is the interface the LLM tools bind to.
// Implementations (like package coderunner Engine) own the pipeline and the executor.
type Runner interface {
	Run(ctx context.Context, args RunArgs) (RunResult, error)
	Fix(ctx context.Context, args FixArgs) (FixResult, error)
}
