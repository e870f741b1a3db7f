package delivery

import (
	"net/http"

	"focusmeet-backend/internal/patient/dto"
	"focusmeet-backend/internal/patient/usecase"
	"focusmeet-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// PatientHandler handles patient-related HTTP requests
type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
}

// NewPatientHandler creates a new PatientHandler
func NewPatientHandler(patientUsecase usecase.PatientUsecase) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
	}
}

// CreatePatient creates a patient owned by the caller
// POST /api/patients
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.PatientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("invalid request body: "+err.Error()))
		return
	}

	patient, err := h.patientUsecase.Create(c.Request.Context(), userID, &req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CreatePatientResponse{OK: true, ID: patient.ID, Patient: patient})
}

// GetPatients lists the caller's patients
// GET /api/patients?q=ana
func (h *PatientHandler) GetPatients(c *gin.Context) {
	userID := c.GetString("userID")

	patients, err := h.patientUsecase.List(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, patients)
}

// GetPatientByID returns a specific patient
// GET /api/patients/:id
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	userID := c.GetString("userID")

	patient, err := h.patientUsecase.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, patient)
}

// UpdatePatient replaces the provided fields
// PATCH /api/patients/:id
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	userID := c.GetString("userID")

	var req dto.PatientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("invalid request body: "+err.Error()))
		return
	}

	if err := h.patientUsecase.Update(c.Request.Context(), userID, c.Param("id"), &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeletePatient removes a patient and its reports
// DELETE /api/patients/:id
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.patientUsecase.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
