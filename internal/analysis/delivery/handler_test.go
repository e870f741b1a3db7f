package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"focusmeet-backend/internal/analysis/usecase"
	"focusmeet-backend/pkg/ai"
	"focusmeet-backend/pkg/transcription"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	err error
}

func (f *fakeTranscriber) Name() string { return "fake" }

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (*transcription.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &transcription.Transcript{
		Text:     string(audio),
		Speakers: []transcription.Speaker{{ID: "A"}},
		Segments: []transcription.Segment{},
	}, nil
}

type fakeAnalyzer struct {
	got ai.Request
	err error
}

func (f *fakeAnalyzer) Name() string { return "fake" }

func (f *fakeAnalyzer) Analyze(ctx context.Context, req ai.Request) (*ai.Result, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Result{ShortSummary: "Cefalea", KeyPoints: []string{}, Decisions: []string{}, Tasks: []ai.Task{}}, nil
}

func setup(tr transcription.Transcriber, an ai.Analyzer, limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalysisHandler(usecase.NewAnalysisUsecase(tr, an), limit)
	r := gin.New()
	r.POST("/chat/transcribe", h.Transcribe)
	r.POST("/chat/analyze", h.Analyze)
	return r
}

func upload(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="consulta.webm"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/chat/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestTranscribe(t *testing.T) {
	r := setup(transcription.Validating(&fakeTranscriber{}), &fakeAnalyzer{}, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, upload(t, "file", "audio/webm", []byte("hola")))
	require.Equal(t, http.StatusOK, w.Code)
	var out transcription.Transcript
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "hola", out.Text)

	cases := []struct {
		name string
		req  *http.Request
	}{
		{"unsupported type", upload(t, "file", "text/plain", []byte("hola"))},
		{"empty file", upload(t, "file", "audio/wav", nil)},
		{"missing field", upload(t, "audio", "audio/wav", []byte("hola"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, tc.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestTranscribe_TooLarge(t *testing.T) {
	r := setup(transcription.Validating(&fakeTranscriber{}), &fakeAnalyzer{}, 64)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, upload(t, "file", "audio/wav", bytes.Repeat([]byte("a"), 4096)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranscribe_ProviderFailure(t *testing.T) {
	r := setup(transcription.Validating(&fakeTranscriber{err: errors.New("status 500")}), &fakeAnalyzer{}, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, upload(t, "file", "audio/wav", []byte("hola")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAnalyze(t *testing.T) {
	an := &fakeAnalyzer{}
	r := setup(&fakeTranscriber{}, an, 0)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/chat/analyze", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	w := post(`{"text":"me duele la cabeza","format":"hpi_ros","model":"llama3-70b-8192"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"shortSummary":"Cefalea"`)
	assert.Equal(t, ai.FormatHPIROS, an.got.Format)
	assert.Equal(t, "llama3-70b-8192", an.got.Model)

	w = post(`{"text":"hola"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ai.FormatSOAP, an.got.Format)

	assert.Equal(t, http.StatusBadRequest, post(`{"text":"   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"text":"x","format":"narrative"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`not json`).Code)

	an.err = errors.New("all AI providers failed")
	assert.Equal(t, http.StatusInternalServerError, post(`{"text":"x"}`).Code)
}
