package api

import (
	"net/http"
	"os"

	"focusmeet-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// StatusHandler reports liveness and which backends were selected at startup.
// It never exposes secret values.
type StatusHandler struct {
	config *config.Config
	deps   Deps
}

func NewStatusHandler(cfg *config.Config, deps Deps) *StatusHandler {
	return &StatusHandler{config: cfg, deps: deps}
}

// Health is the liveness probe
// GET /api/health
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StatusResponse describes the running configuration
type StatusResponse struct {
	Status        string          `json:"status"`
	Env           string          `json:"env"`
	Store         string          `json:"store"`
	Auth          string          `json:"auth"`
	AI            string          `json:"ai"`
	Transcription string          `json:"transcription"`
	Push          bool            `json:"push"`
	Variables     map[string]bool `json:"variables"`
}

// Status reports the selected backends and which variables are set
// GET /api/status
func (h *StatusHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:        "ok",
		Env:           h.config.Env,
		Store:         h.deps.Store.Name(),
		Auth:          h.deps.Verifier.Name(),
		AI:            h.deps.Analyzer.Name(),
		Transcription: h.deps.Transcriber.Name(),
		Push:          h.deps.Sender != nil,
		Variables:     VariablesSet(),
	})
}

// VariablesSet maps every supported variable to whether it is set in the environment
func VariablesSet() map[string]bool {
	out := make(map[string]bool)
	for _, k := range config.Keys() {
		v, ok := os.LookupEnv(k)
		out[k] = ok && v != ""
	}
	return out
}
