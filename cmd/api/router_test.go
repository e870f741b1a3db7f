package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authUsecase "focusmeet-backend/internal/auth/usecase"
	"focusmeet-backend/pkg/ai"
	"focusmeet-backend/pkg/config"
	"focusmeet-backend/pkg/store"
	"focusmeet-backend/pkg/transcription"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type cannedAnalyzer struct{}

func (cannedAnalyzer) Name() string { return "canned" }

func (cannedAnalyzer) Analyze(ctx context.Context, req ai.Request) (*ai.Result, error) {
	return &ai.Result{ShortSummary: "Resumen. Detalle.", KeyPoints: []string{}, Decisions: []string{}, Tasks: []ai.Task{}}, nil
}

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	tr, err := transcription.New(transcription.Config{Provider: transcription.ProviderWhisper})
	require.NoError(t, err)

	cfg := &config.Config{Env: "test", CORSOrigins: []string{"http://localhost:5173"}, MaxUploadMB: 1}
	h := Assemble(cfg, Deps{
		Store:       st,
		Verifier:    authUsecase.NewDevVerifier(testSecret),
		Transcriber: tr,
		Analyzer:    cannedAnalyzer{},
	})
	return &testServer{t: t, router: h.Router()}
}

func (s *testServer) token(uid string) string {
	tok, err := authUsecase.IssueDevToken(testSecret, uid, uid+"@example.com", time.Hour)
	require.NoError(s.t, err)
	return tok
}

func (s *testServer) do(method, path, uid, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(uid))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthAndStatus(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	t.Setenv("GROQ_API_KEY", "should-not-leak")
	w = s.do(http.MethodGet, "/api/status", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "should-not-leak")

	var status StatusResponse
	decode(t, w, &status)
	assert.Equal(t, "filesystem", status.Store)
	assert.Equal(t, "dev-jwt", status.Auth)
	assert.Equal(t, "whisper", status.Transcription)
	assert.False(t, status.Push)
	assert.True(t, status.Variables["GROQ_API_KEY"])
}

func TestDataRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/patients", "/api/reports", "/api/tasks"} {
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, path, "", "").Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/chat/analyze", "", `{"text":"x"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/feedback", "", `{"rating":5}`).Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/patients", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestClinicalFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/users/ensure", "alice", `{"displayName":"Dra. Alice"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"ok":true,"source":"filesystem","uid":"alice"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/patients", "alice", `{"name":"Ana Gómez","age":"41"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		OK bool   `json:"ok"`
		ID string `json:"id"`
	}
	decode(t, w, &created)
	require.True(t, created.OK)
	patientID := created.ID

	w = s.do(http.MethodPost, "/api/chat/analyze", "alice", `{"text":"me duele la cabeza"}`)
	require.Equal(t, http.StatusOK, w.Code)
	analysis := w.Body.String()

	w = s.do(http.MethodPost, "/api/reports", "alice", `{"patientId":"`+patientID+`","analysis":`+analysis+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		OK    bool   `json:"ok"`
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	decode(t, w, &report)
	assert.Equal(t, "Resumen", report.Title)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/reports", "alice", `{"analysis":`+analysis+`}`).Code)

	w = s.do(http.MethodGet, "/api/reports", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Gómez", list[0]["patientName"])
	assert.Equal(t, "Resumen. Detalle.", list[0]["summary"])
	assert.NotContains(t, list[0], "analysis")

	w = s.do(http.MethodGet, "/api/reports/"+report.ID+"?download=1", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename="+report.ID+".json", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = s.do(http.MethodGet, "/api/patients/"+patientID+"/reports", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Len(t, list, 1)

	// another user can see none of it
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/patients/"+patientID, "bob", "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/reports/"+report.ID, "bob", "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/patients/"+patientID+"/reports", "bob", "").Code)
	w = s.do(http.MethodGet, "/api/reports", "bob", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodPatch, "/api/reports/"+report.ID, "alice", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPatch, "/api/reports/"+report.ID, "alice", `{"meta":{"reviewed":true}}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/feedback", "alice", `{"rating":5,"comment":"útil"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/feedback", "alice", `{"rating":0}`).Code)

	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/patients/"+patientID, "alice", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/reports/"+report.ID, "alice", "").Code)
}
