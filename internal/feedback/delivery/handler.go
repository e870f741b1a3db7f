package delivery

import (
	"net/http"

	"focusmeet-backend/internal/feedback/dto"
	"focusmeet-backend/internal/feedback/usecase"
	"focusmeet-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackUsecase usecase.FeedbackUsecase
}

func NewFeedbackHandler(feedbackUsecase usecase.FeedbackUsecase) *FeedbackHandler {
	return &FeedbackHandler{feedbackUsecase: feedbackUsecase}
}

// SubmitFeedback stores a rating and comment
// POST /api/feedback
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req dto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("invalid request body: "+err.Error()))
		return
	}

	id, err := h.feedbackUsecase.Create(c.Request.Context(), c.GetString("userID"), c.GetString("userEmail"), &req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CreateFeedbackResponse{
		Success: true,
		Message: "Feedback enviado correctamente",
		ID:      id,
	})
}
