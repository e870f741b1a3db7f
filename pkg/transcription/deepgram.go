package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultDeepgramURL = "https://api.deepgram.com/v1/listen?model=nova-2&punctuate=true&diarize=true&language=es"

// Deepgram sends the audio in one request and maps diarized words to segments
type Deepgram struct {
	apiKey string
	url    string
	client *http.Client
}

func NewDeepgram(apiKey string) *Deepgram {
	return &Deepgram{
		apiKey: apiKey,
		url:    DefaultDeepgramURL,
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (d *Deepgram) Name() string { return string(ProviderDeepgram) }

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
				Words      []struct {
					Word           string  `json:"word"`
					PunctuatedWord string  `json:"punctuated_word"`
					Start          float64 `json:"start"`
					End            float64 `json:"end"`
					Confidence     float64 `json:"confidence"`
					Speaker        int     `json:"speaker"`
				} `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (d *Deepgram) Transcribe(ctx context.Context, audio []byte, mimeType string) (*Transcript, error) {
	if d.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", mimeType)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deepgram API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var data deepgramResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	out := &Transcript{Speakers: []Speaker{}, Segments: []Segment{}}
	if len(data.Results.Channels) == 0 || len(data.Results.Channels[0].Alternatives) == 0 {
		return out, nil
	}
	alt := data.Results.Channels[0].Alternatives[0]
	out.Text = alt.Transcript

	seen := make(map[string]bool)
	for _, w := range alt.Words {
		speaker := fmt.Sprintf("speaker_%d", w.Speaker)
		if !seen[speaker] {
			seen[speaker] = true
			out.Speakers = append(out.Speakers, Speaker{ID: speaker})
		}
		text := w.PunctuatedWord
		if text == "" {
			text = w.Word
		}
		conf := w.Confidence
		if conf == 0 {
			conf = 1
		}
		out.Segments = append(out.Segments, Segment{Text: text, Start: w.Start, End: w.End, Speaker: speaker, Confidence: conf})
	}
	return out, nil
}
