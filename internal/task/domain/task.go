package domain

import "time"

// Task is an action item extracted by the analyzer, listed together with the report it came from
type Task struct {
	ReportID    string    `json:"reportId"`
	ReportTitle string    `json:"reportTitle"`
	PatientID   string    `json:"patientId,omitempty"`
	Description string    `json:"description"`
	Responsible string    `json:"responsible"`
	CreatedAt   time.Time `json:"createdAt"`
}
