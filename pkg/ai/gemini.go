package ai

import (
	"context"

	"focusmeet-backend/pkg/gemini"
)

type geminiCompleter struct {
	svc *gemini.GeminiService
}

func (g geminiCompleter) complete(ctx context.Context, system, user, model string) (string, error) {
	return g.svc.GenerateJSON(ctx, system, user, model)
}

// NewGeminiAnalyzer returns an Analyzer backed by the Gemini API
func NewGeminiAnalyzer(svc *gemini.GeminiService) Analyzer {
	return &chatAnalyzer{name: string(ProviderGemini), c: geminiCompleter{svc: svc}}
}
