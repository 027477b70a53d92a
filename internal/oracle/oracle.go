// Package oracle adapts external text-completion services for habit
// classification and emoji suggestions.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daylog/internal/constants"
)

// ErrDisabled is returned by Disabled for every call.
var ErrDisabled = errors.New("classification oracle is not configured")

// Completer sends one system+user prompt pair and returns the completion text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Config selects and configures a completion backend.
type Config struct {
	Provider constants.OracleProvider
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Disabled is used when no API key is configured. Callers fall back to defaults.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}

// New builds the Completer for cfg. A missing API key or the "none" provider
// yields Disabled rather than an error.
func New(ctx context.Context, cfg Config) (Completer, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultOracleTimeout
	}
	if cfg.Provider == constants.OracleNone || cfg.APIKey == "" {
		return Disabled{}, nil
	}

	switch cfg.Provider {
	case constants.OracleOpenAI, "":
		return NewOpenAIClient(cfg), nil
	case constants.OracleGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}
