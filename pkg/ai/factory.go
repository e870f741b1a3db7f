package ai

import (
	"fmt"

	"focusmeet-backend/pkg/gemini"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // groq, gemini, ollama or auto

	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string

	GeminiAPIKey string

	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewAnalyzer creates an Analyzer based on the config.
// Switch AI provider by changing cfg.Provider; auto chains every configured provider.
func NewAnalyzer(cfg Config) (Analyzer, error) {
	switch cfg.Provider {
	case ProviderGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required for Groq provider")
		}
		return NewGroqAnalyzer(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL), nil

	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiAnalyzer(gemini.NewGeminiService(cfg.GeminiAPIKey)), nil

	case ProviderOllama:
		return NewOllamaAnalyzer(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	case ProviderAuto, "":
		var chain []Analyzer
		if cfg.GroqAPIKey != "" {
			chain = append(chain, NewGroqAnalyzer(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL))
		}
		if cfg.GeminiAPIKey != "" {
			chain = append(chain, NewGeminiAnalyzer(gemini.NewGeminiService(cfg.GeminiAPIKey)))
		}
		// Ollama needs no key, so it is always the last resort
		chain = append(chain, NewOllamaAnalyzer(cfg.OllamaBaseURL, cfg.OllamaModel))
		return NewFallbackService(chain...), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
