package spec

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSessionActive   = errors.New("session already collecting inputs")
	ErrSessionNotFound = errors.New("session not found")
	ErrNilExecutor     = errors.New("nil executor")
	ErrNilSender       = errors.New("nil sender")
	ErrEmptyScript     = errors.New("empty script")
	ErrMissingInputs   = errors.New("not enough inputs for script prompts")
)
