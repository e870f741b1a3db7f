package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog/log"
)

// FallbackService tries each provider in order and returns the first successful analysis.
// The usual chain is Groq (fast, hosted), then Gemini, then a local Ollama.
type FallbackService struct {
	providers []Analyzer
}

// NewFallbackService creates a new fallback service over the given providers
func NewFallbackService(providers ...Analyzer) *FallbackService {
	return &FallbackService{providers: providers}
}

func (f *FallbackService) Name() string { return string(ProviderAuto) }

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return containsAny(err.Error(),
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"EOF",
	)
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	return containsAny(err.Error(),
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"resource_exhausted",
	)
}

func containsAny(s string, indicators ...string) bool {
	s = strings.ToLower(s)
	for _, indicator := range indicators {
		if strings.Contains(s, strings.ToLower(indicator)) {
			return true
		}
	}
	return false
}

func reason(err error) string {
	switch {
	case isQuotaError(err):
		return "quota"
	case isConnectionError(err):
		return "connection"
	default:
		return "error"
	}
}

// Analyze implements Analyzer
func (f *FallbackService) Analyze(ctx context.Context, req Request) (*Result, error) {
	if len(f.providers) == 0 {
		return nil, fmt.Errorf("no AI provider available for analysis")
	}

	var errs []error
	for _, p := range f.providers {
		result, err := p.Analyze(ctx, req)
		if err == nil {
			log.Info().Str("component", "ai").Str("provider", p.Name()).Msg("analysis successful")
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).
			Str("component", "ai").
			Str("provider", p.Name()).
			Str("reason", reason(err)).
			Msg("provider failed, falling back")
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return nil, fmt.Errorf("all AI providers failed: %w", errors.Join(errs...))
}
