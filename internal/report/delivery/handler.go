package delivery

import (
	"net/http"

	"focusmeet-backend/internal/report/dto"
	"focusmeet-backend/internal/report/usecase"
	"focusmeet-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ReportHandler handles report-related HTTP requests
type ReportHandler struct {
	reportUsecase usecase.ReportUsecase
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportUsecase usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{
		reportUsecase: reportUsecase,
	}
}

// CreateReport saves an analysis as a report for one of the caller's patients
// POST /api/reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("invalid request body: "+err.Error()))
		return
	}

	report, err := h.reportUsecase.Create(c.Request.Context(), userID, &req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CreateReportResponse{
		OK:       true,
		ID:       report.ID,
		Filename: report.ID,
		Title:    report.Title,
	})
}

// GetReports lists the caller's reports
// GET /api/reports?q=ana
func (h *ReportHandler) GetReports(c *gin.Context) {
	userID := c.GetString("userID")

	reports, err := h.reportUsecase.List(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// GetPatientReports lists the reports of one patient
// GET /api/patients/:id/reports
func (h *ReportHandler) GetPatientReports(c *gin.Context) {
	userID := c.GetString("userID")

	reports, err := h.reportUsecase.ListByPatient(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// GetReportByID returns a report, as an attachment when ?download=1
// GET /api/reports/:id
func (h *ReportHandler) GetReportByID(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	report, err := h.reportUsecase.Get(c.Request.Context(), userID, id)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	switch c.Query("download") {
	case "1", "true":
		c.Header("Content-Disposition", "attachment; filename="+id+".json")
		c.Header("Cache-Control", "no-store")
		c.IndentedJSON(http.StatusOK, report)
	default:
		c.JSON(http.StatusOK, report)
	}
}

// UpdateReport replaces analysis and/or meta
// PATCH /api/reports/:id
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("invalid request body: "+err.Error()))
		return
	}

	if err := h.reportUsecase.Update(c.Request.Context(), userID, c.Param("id"), &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteReport removes a report
// DELETE /api/reports/:id
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.reportUsecase.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
