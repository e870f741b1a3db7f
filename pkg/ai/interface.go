package ai

import "context"

// Format selects the clinical note layout the model is asked for
type Format string

const (
	FormatSOAP   Format = "soap"
	FormatHPIROS Format = "hpi_ros"
)

// Task is an action item found in a consultation
type Task struct {
	Description string `json:"description"`
	Responsible string `json:"responsible"`
}

// Result is the structured analysis returned by every provider
type Result struct {
	ShortSummary    string   `json:"shortSummary"`
	DetailedSummary string   `json:"detailedSummary"`
	KeyPoints       []string `json:"keyPoints"`
	Decisions       []string `json:"decisions"`
	Tasks           []Task   `json:"tasks"`
	Sentiment       string   `json:"sentiment,omitempty"`
}

// Request is one analysis call. Model is an optional override honored by providers that support it.
type Request struct {
	Text   string
	Format Format
	Model  string
}

// Analyzer turns a transcript into a clinical note.
// Implement this interface to add new AI providers.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
	Name() string
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGroq   ProviderType = "groq"
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
