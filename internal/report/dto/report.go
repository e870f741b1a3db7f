package dto

import "focusmeet-backend/internal/report/domain"

// CreateReportRequest is the body of POST /api/reports
type CreateReportRequest struct {
	Analysis  *domain.Analysis       `json:"analysis"`
	Meta      map[string]interface{} `json:"meta"`
	PatientID string                 `json:"patientId"`
	Format    string                 `json:"format"`
}

// CreateReportResponse mirrors what the client stores for navigation
type CreateReportResponse struct {
	OK       bool   `json:"ok"`
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

// UpdateReportRequest replaces analysis and/or meta wholesale
type UpdateReportRequest struct {
	Analysis *domain.Analysis       `json:"analysis"`
	Meta     map[string]interface{} `json:"meta"`
}

// ReportDetail is a full report with the best-effort patient name
type ReportDetail struct {
	*domain.Report
	PatientName *string `json:"patientName"`
}
