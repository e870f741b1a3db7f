package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"focusmeet-backend/pkg/gemini"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisJSON = `{"shortSummary":"Cefalea tensional.","detailedSummary":"S (SUBJETIVO):\nDolor","keyPoints":["Dolor frontal"],"decisions":["Paracetamol"],"sentiment":"Neutral"}`

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"bare":          `{"a":1}`,
		"fenced":        "Claro:\n```json\n{\"a\":1}\n```\nListo",
		"plain fence":   "```\n{\"a\":1}\n```",
		"leading prose": `Aquí está el reporte: {"a":1} gracias`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := ExtractJSON(in)
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":1}`, out)
		})
	}

	_, err := ExtractJSON("no json here")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestParseResult(t *testing.T) {
	res, err := ParseResult("```json\n" + analysisJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Cefalea tensional.", res.ShortSummary)
	assert.Equal(t, []string{"Dolor frontal"}, res.KeyPoints)
	assert.Equal(t, []Task{}, res.Tasks)
	assert.Equal(t, "neutral", res.Sentiment)

	res, err = ParseResult(`{"shortSummary":"x","sentiment":"feliz"}`)
	require.NoError(t, err)
	assert.Empty(t, res.Sentiment)
	assert.Equal(t, []string{}, res.Decisions)

	_, err = ParseResult(`{"shortSummary": }`)
	assert.Error(t, err)
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, SystemPrompt(FormatSOAP), "SOAP")
	assert.Contains(t, SystemPrompt(""), "SOAP")
	assert.Contains(t, SystemPrompt(FormatHPIROS), "HPI")
	assert.Contains(t, UserMessage("hola"), "Transcripción:\nhola")
}

func TestGroqAnalyzer(t *testing.T) {
	var got struct {
		Model          string            `json:"model"`
		Messages       []chatMessage     `json:"messages"`
		ResponseFormat map[string]string `json:"response_format"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": analysisJSON}},
			},
		})
	}))
	defer srv.Close()

	a := NewGroqAnalyzer("gsk-test", "", srv.URL)
	res, err := a.Analyze(context.Background(), Request{Text: "me duele la cabeza", Format: FormatHPIROS, Model: "llama-custom"})
	require.NoError(t, err)
	assert.Equal(t, "Cefalea tensional.", res.ShortSummary)
	assert.Equal(t, "llama-custom", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat["type"])
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "HPI/ROS")
	assert.Contains(t, got.Messages[1].Content, "me duele la cabeza")
}

func TestGroqAnalyzer_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limit"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGroqAnalyzer("k", "", srv.URL).Analyze(context.Background(), Request{Text: "x"})
	require.Error(t, err)
	assert.True(t, isQuotaError(err))
}

func TestOllamaAnalyzer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "mistral", body["model"], "ollama ignores the per-request override")
		assert.Equal(t, "json", body["format"])
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": analysisJSON},
			"done":    true,
		})
	}))
	defer srv.Close()

	res, err := NewOllamaAnalyzer(srv.URL, "mistral").Analyze(context.Background(), Request{Text: "x", Model: "llama-custom"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Paracetamol"}, res.Decisions)
}

func TestGeminiAnalyzer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/"+gemini.DefaultModel+":generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": analysisJSON}}}},
			},
		})
	}))
	defer srv.Close()

	svc := gemini.NewGeminiService("g-key")
	svc.BaseURL = srv.URL
	res, err := NewGeminiAnalyzer(svc).Analyze(context.Background(), Request{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Cefalea tensional.", res.ShortSummary)
}

type stubAnalyzer struct {
	name  string
	err   error
	calls int
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &Result{ShortSummary: s.name}, nil
}

func TestFallbackService(t *testing.T) {
	groq := &stubAnalyzer{name: "groq", err: errors.New("groq API error (429): quota")}
	gem := &stubAnalyzer{name: "gemini"}
	ollama := &stubAnalyzer{name: "ollama"}

	res, err := NewFallbackService(groq, gem, ollama).Analyze(context.Background(), Request{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", res.ShortSummary)
	assert.Equal(t, 0, ollama.calls)

	gem.err = errors.New("dial tcp: connection refused")
	ollama.err = errors.New("boom")
	_, err = NewFallbackService(groq, gem, ollama).Analyze(context.Background(), Request{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "groq")
	assert.Contains(t, err.Error(), "ollama")

	_, err = NewFallbackService().Analyze(context.Background(), Request{Text: "x"})
	assert.Error(t, err)
}

func TestNewAnalyzer(t *testing.T) {
	_, err := NewAnalyzer(Config{Provider: ProviderGroq})
	assert.Error(t, err)
	_, err = NewAnalyzer(Config{Provider: ProviderGemini})
	assert.Error(t, err)
	_, err = NewAnalyzer(Config{Provider: "openai"})
	assert.Error(t, err)

	a, err := NewAnalyzer(Config{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, "ollama", a.Name())

	a, err = NewAnalyzer(Config{Provider: ProviderAuto, GroqAPIKey: "k"})
	require.NoError(t, err)
	fb, ok := a.(*FallbackService)
	require.True(t, ok)
	require.Len(t, fb.providers, 2)
	assert.Equal(t, "groq", fb.providers[0].Name())
	assert.Equal(t, "ollama", fb.providers[1].Name())
}

func TestClassifyErrors(t *testing.T) {
	assert.True(t, isConnectionError(errors.New("dial tcp 127.0.0.1:11434: connection refused")))
	assert.False(t, isConnectionError(nil))
	assert.True(t, isQuotaError(errors.New("RESOURCE_EXHAUSTED")))
	assert.Equal(t, "quota", reason(errors.New("429")))
	assert.Equal(t, "error", reason(errors.New("bad json")))
}
