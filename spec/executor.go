package spec

import "context"

// Executor runs a finalized script.
//
// Contract:
//   - inputs are joined with "\n" (plus a trailing "\n") and fed as the program's stdin;
//   - a wall-clock timeout yields TimeoutResult instead of an error;
//   - otherwise the result is stdout followed by stderr;
//   - an empty result is replaced with NoOutputResult.
//
// Errors are reserved for failures to start the run at all (workspace, tool setup).
type Executor interface {
	Execute(ctx context.Context, script string, inputs []string) (string, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, script string, inputs []string) (string, error)

func (f ExecutorFunc) Execute(ctx context.Context, script string, inputs []string) (string, error) {
	return f(ctx, script, inputs)
}

// Sender delivers a message to a conversation. Delivery is fire-and-forget:
// the engine logs errors and carries on.
type Sender interface {
	Send(ctx context.Context, key ConversationKey, text string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, key ConversationKey, text string) error

func (f SenderFunc) Send(ctx context.Context, key ConversationKey, text string) error {
	return f(ctx, key, text)
}
