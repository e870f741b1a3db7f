package transcription

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyAudio        = errors.New("audio file is empty")
	ErrMissingAPIKey     = errors.New("transcription provider API key is not configured")
)

// SupportedMIMETypes lists the upload types accepted before dispatch
var SupportedMIMETypes = []string{
	"audio/mp3",
	"audio/wav",
	"audio/mpeg",
	"audio/ogg",
	"audio/webm",
	"audio/m4a",
	"audio/mp4",
	"audio/x-m4a",
	"audio/aac",
	"audio/x-flac",
	"video/mp4",
	"video/quicktime",
}

type Speaker struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Segment times are in seconds
type Segment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Speaker    string  `json:"speaker"`
	Confidence float64 `json:"confidence"`
}

type Transcript struct {
	Text     string    `json:"text"`
	Speakers []Speaker `json:"speakers"`
	Segments []Segment `json:"segments"`
}

// Transcriber converts recorded audio to text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*Transcript, error)
	Name() string
}

// ProviderType represents the speech-to-text provider
type ProviderType string

const (
	ProviderAssemblyAI ProviderType = "assemblyai"
	ProviderDeepgram   ProviderType = "deepgram"
	ProviderWhisper    ProviderType = "whisper"
)

// Config holds transcription provider configuration
type Config struct {
	Provider         ProviderType
	AssemblyAIAPIKey string
	DeepgramAPIKey   string
	OpenAIAPIKey     string
}

// New creates the configured Transcriber. Uploads are validated before they reach the provider.
func New(cfg Config) (Transcriber, error) {
	var inner Transcriber
	switch cfg.Provider {
	case ProviderAssemblyAI, "":
		inner = NewAssemblyAI(cfg.AssemblyAIAPIKey)
	case ProviderDeepgram:
		inner = NewDeepgram(cfg.DeepgramAPIKey)
	case ProviderWhisper:
		inner = NewWhisper(cfg.OpenAIAPIKey)
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", cfg.Provider)
	}
	return Validating(inner), nil
}

// Validate checks the MIME type (case-insensitive, parameters ignored) and that audio is not empty
func Validate(audio []byte, mimeType string) error {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	supported := false
	for _, s := range SupportedMIMETypes {
		if mt == s {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, mimeType, strings.Join(SupportedMIMETypes, ", "))
	}
	if len(audio) == 0 {
		return ErrEmptyAudio
	}
	return nil
}

type validating struct {
	Transcriber
}

// Validating wraps t so every call is checked with Validate first
func Validating(t Transcriber) Transcriber {
	return validating{Transcriber: t}
}

func (v validating) Transcribe(ctx context.Context, audio []byte, mimeType string) (*Transcript, error) {
	if err := Validate(audio, mimeType); err != nil {
		return nil, err
	}
	return v.Transcriber.Transcribe(ctx, audio, mimeType)
}
