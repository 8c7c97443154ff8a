package engine

import "errors"

// Evaluation outcomes. ErrEmpty is a no-op signal, not a failure.
var (
	ErrEmpty = errors.New("empty expression")
	ErrEval  = errors.New("evaluation error")
)

// Boundary errors returned to the UI collaborator for names or indexes it
// should never send.
var (
	ErrUnknownFunction = errors.New("unknown function")
	ErrUnknownAction   = errors.New("unknown action")
	ErrHistoryIndex    = errors.New("history index out of range")
	ErrAngleMode       = errors.New("unknown angle mode")
)
