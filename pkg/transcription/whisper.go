package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

const DefaultWhisperURL = "https://api.openai.com/v1/audio/transcriptions"

const whisperSpeaker = "speaker_0"

// Whisper uses the OpenAI transcription endpoint. It does not diarize, every segment
// is attributed to a single speaker.
type Whisper struct {
	apiKey string
	url    string
	client *http.Client
}

func NewWhisper(apiKey string) *Whisper {
	return &Whisper{
		apiKey: apiKey,
		url:    DefaultWhisperURL,
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (w *Whisper) Name() string { return string(ProviderWhisper) }

func (w *Whisper) Transcribe(ctx context.Context, audio []byte, mimeType string) (*Transcript, error) {
	if w.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="audio"`)
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	for k, v := range map[string]string{
		"model":                     "whisper-1",
		"response_format":           "verbose_json",
		"timestamp_granularities[]": "segment",
	} {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var data struct {
		Text     string `json:"text"`
		Segments []struct {
			Text  string  `json:"text"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	out := &Transcript{
		Text:     data.Text,
		Speakers: []Speaker{{ID: whisperSpeaker}},
		Segments: make([]Segment, 0, len(data.Segments)),
	}
	for _, s := range data.Segments {
		out.Segments = append(out.Segments, Segment{Text: s.Text, Start: s.Start, End: s.End, Speaker: whisperSpeaker, Confidence: 1})
	}
	return out, nil
}
