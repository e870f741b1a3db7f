package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultAssemblyAIBaseURL = "https://api.assemblyai.com/v2"

	assemblyMaxAttempts  = 30
	assemblyPollInterval = time.Second
)

// AssemblyAI uploads the audio, creates a transcript job and polls it until it completes
type AssemblyAI struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	maxAttempts  int
}

func NewAssemblyAI(apiKey string) *AssemblyAI {
	return &AssemblyAI{
		apiKey:       apiKey,
		baseURL:      DefaultAssemblyAIBaseURL,
		client:       &http.Client{Timeout: 5 * time.Minute},
		pollInterval: assemblyPollInterval,
		maxAttempts:  assemblyMaxAttempts,
	}
}

func (a *AssemblyAI) Name() string { return string(ProviderAssemblyAI) }

type assemblyUtterance struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

type assemblyTranscript struct {
	ID         string              `json:"id"`
	Status     string              `json:"status"`
	Text       string              `json:"text"`
	Utterances []assemblyUtterance `json:"utterances"`
	Error      string              `json:"error"`
}

func (a *AssemblyAI) Transcribe(ctx context.Context, audio []byte, mimeType string) (*Transcript, error) {
	if a.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var upload struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(ctx, http.MethodPost, "/upload", "application/octet-stream", bytes.NewReader(audio), &upload); err != nil {
		return nil, fmt.Errorf("assemblyai upload: %w", err)
	}
	if upload.UploadURL == "" {
		return nil, fmt.Errorf("assemblyai upload: no upload_url returned")
	}

	job := map[string]interface{}{
		"audio_url":      upload.UploadURL,
		"language_code":  "es",
		"speaker_labels": true,
		"punctuate":      true,
		"format_text":    true,
	}
	body, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	var created assemblyTranscript
	if err := a.do(ctx, http.MethodPost, "/transcript", "application/json", bytes.NewReader(body), &created); err != nil {
		return nil, fmt.Errorf("assemblyai create transcript: %w", err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("assemblyai create transcript: no id returned")
	}

	logger := log.With().Str("component", "transcription").Str("provider", a.Name()).Str("transcript_id", created.ID).Logger()

	var status assemblyTranscript
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(a.pollInterval):
		}

		if err := a.do(ctx, http.MethodGet, "/transcript/"+created.ID, "", nil, &status); err != nil {
			return nil, fmt.Errorf("assemblyai poll: %w", err)
		}
		logger.Debug().Int("attempt", attempt).Str("status", status.Status).Msg("polled transcript")

		switch status.Status {
		case "completed":
			return fromUtterances(status), nil
		case "error":
			return nil, fmt.Errorf("assemblyai transcription failed: %s", status.Error)
		}
	}
	return nil, fmt.Errorf("assemblyai transcription did not complete after %d attempts (last status %q)", a.maxAttempts, status.Status)
}

func fromUtterances(t assemblyTranscript) *Transcript {
	out := &Transcript{Text: t.Text, Speakers: []Speaker{}, Segments: make([]Segment, 0, len(t.Utterances))}
	seen := make(map[string]bool)
	for _, u := range t.Utterances {
		if !seen[u.Speaker] {
			seen[u.Speaker] = true
			out.Speakers = append(out.Speakers, Speaker{ID: u.Speaker, Name: "Participante " + u.Speaker})
		}
		conf := u.Confidence
		if conf == 0 {
			conf = 1
		}
		out.Segments = append(out.Segments, Segment{
			Text:       u.Text,
			Start:      u.Start / 1000,
			End:        u.End / 1000,
			Speaker:    u.Speaker,
			Confidence: conf,
		})
	}
	return out
}

func (a *AssemblyAI) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", a.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}
