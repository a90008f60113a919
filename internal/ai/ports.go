package ai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no LLM backend could be initialized.
var ErrNotConfigured = errors.New("LLM backend not configured: set up Application Default Credentials or provide GEMINI_API_KEY / OPENAI_API_KEY")

// LLM is the external text generator. It knows nothing about dashboards or prompts.
type LLM interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

type GenerationParams struct {
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// State records how the backend was initialized at startup.
type State int

const (
	StateUninitialized State = iota
	// StateRemote: Vertex AI through Application Default Credentials.
	StateRemote
	// StateDirect: provider API key.
	StateDirect
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRemote:
		return "remote"
	case StateDirect:
		return "direct"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Configured reports whether Generate can be called.
func (s State) Configured() bool {
	return s == StateRemote || s == StateDirect
}
