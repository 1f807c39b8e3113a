package spec

import "time"

// ConversationKey identifies one independent dialog (a chat, a channel, a terminal).
// Sessions are keyed by conversation, never by user.
type ConversationKey string

const (
	// FallbackPrompt is shown for read calls without a usable literal argument.
	FallbackPrompt = "Enter value:"

	// TimeoutResult replaces the whole result when execution exceeds its budget.
	TimeoutResult = "❌ Execution took too long."

	// NoOutputResult replaces an empty (or whitespace-only) result.
	NoOutputResult = "No output."
)

// Dialect names the guest-language constructs the repair pipeline and the
// prompt extractor look for. The zero value is not useful; start from DefaultDialect.
type Dialect struct {
	// ReadCalls are the interactive-read constructs (call sites pause for one line of input).
	ReadCalls []string `json:"readCalls" yaml:"readCalls"`

	// OutputCalls are output constructs that get their own line when glued to a previous call.
	OutputCalls []string `json:"outputCalls" yaml:"outputCalls"`

	// BlockKeywords head clauses that open a nested block when followed by a colon.
	BlockKeywords []string `json:"blockKeywords" yaml:"blockKeywords"`
}

// DefaultDialect returns the Python dialect.
func DefaultDialect() Dialect {
	return Dialect{
		ReadCalls:   []string{"input"},
		OutputCalls: []string{"print"},
		BlockKeywords: []string{
			"if", "elif", "else",
			"for", "while",
			"def", "class",
			"try", "except", "finally",
			"with", "match", "case", "async",
		},
	}
}

// PreparedScript is the output of the text-repair pipeline.
type PreparedScript struct {
	Script string `json:"script"`

	// Prompts holds one display-ready question per interactive-read call site, in source order.
	Prompts []string `json:"prompts"`
}

type SessionState string

const (
	SessionStateIdle       SessionState = "idle"
	SessionStateCollecting SessionState = "collecting"
)

// SessionInfo is a read-only snapshot of a collecting session.
type SessionInfo struct {
	ID         string          `json:"id"`
	Key        ConversationKey `json:"key"`
	Script     string          `json:"script"`
	Prompts    []string        `json:"prompts"`
	Answers    []string        `json:"answers"`
	Required   int             `json:"required"`
	Awaiting   bool            `json:"awaiting"`
	CreatedAt  time.Time       `json:"createdAt"`
	LastUsedAt time.Time       `json:"lastUsedAt"`
}

type RunArgs struct {
	Code   string   `json:"code"`
	Inputs []string `json:"inputs,omitempty"`
}

type RunResult struct {
	Script  string   `json:"script"`
	Prompts []string `json:"prompts"`
	Output  string   `json:"output"`
}

type FixArgs struct {
	Code string `json:"code"`
}

type FixResult struct {
	Script  string   `json:"script"`
	Prompts []string `json:"prompts"`
}
