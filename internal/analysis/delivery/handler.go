package delivery

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"focusmeet-backend/internal/analysis/dto"
	"focusmeet-backend/internal/analysis/usecase"
	"focusmeet-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// AnalysisHandler serves the transcription and analysis endpoints
type AnalysisHandler struct {
	analysisUsecase usecase.AnalysisUsecase
	maxUploadBytes  int64
}

func NewAnalysisHandler(analysisUsecase usecase.AnalysisUsecase, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		analysisUsecase: analysisUsecase,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Transcribe converts an uploaded recording to text
// POST /api/chat/transcribe (multipart, field "file")
func (h *AnalysisHandler) Transcribe(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apperror.Respond(c, apperror.Validation(fmt.Sprintf("file exceeds the %d MB upload limit", h.maxUploadBytes>>20)))
			return
		}
		apperror.Respond(c, apperror.Validation("file is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		apperror.Respond(c, apperror.Validation("could not read uploaded file"))
		return
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		apperror.Respond(c, apperror.Validation("could not read uploaded file"))
		return
	}

	transcript, err := h.analysisUsecase.Transcribe(c.Request.Context(), audio, fh.Header.Get("Content-Type"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, transcript)
}

// Analyze turns a transcript into a structured clinical note
// POST /api/chat/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req dto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("invalid request body: "+err.Error()))
		return
	}

	result, err := h.analysisUsecase.Analyze(c.Request.Context(), &req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
