package domain

import "time"

// Format is the clinical note layout requested from the analyzer
type Format string

const (
	FormatSOAP   Format = "soap"
	FormatHPIROS Format = "hpi_ros"
)

// ParseFormat defaults an empty value to SOAP and rejects anything unknown
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case "":
		return FormatSOAP, true
	case FormatSOAP, FormatHPIROS:
		return Format(s), true
	default:
		return "", false
	}
}

// SchemaVersion is stamped on every new report
const SchemaVersion = 1

// Task is an action item extracted from a consultation
type Task struct {
	Description string `json:"description"`
	Responsible string `json:"responsible"`
}

// Analysis is the structured output of the summarizer, stored verbatim in a report
type Analysis struct {
	ShortSummary    string   `json:"shortSummary"`
	DetailedSummary string   `json:"detailedSummary,omitempty"`
	KeyPoints       []string `json:"keyPoints"`
	Decisions       []string `json:"decisions"`
	Tasks           []Task   `json:"tasks"`
	Sentiment       string   `json:"sentiment,omitempty"`
}

// Normalize replaces nil lists with empty ones so clients always get arrays
func (a *Analysis) Normalize() {
	if a.KeyPoints == nil {
		a.KeyPoints = []string{}
	}
	if a.Decisions == nil {
		a.Decisions = []string{}
	}
	if a.Tasks == nil {
		a.Tasks = []Task{}
	}
}

type Report struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	PatientID string                 `json:"patientId,omitempty"`
	Title     string                 `json:"title"`
	Analysis  *Analysis              `json:"analysis"`
	Meta      map[string]interface{} `json:"meta"`
	Format    Format                 `json:"format"`
	Version   int                    `json:"version"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt *time.Time             `json:"updatedAt,omitempty"`
}

// Summary is the list projection of a report. It never carries the full analysis.
type Summary struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	CreatedAt   time.Time              `json:"createdAt"`
	Summary     string                 `json:"summary"`
	Decisions   []string               `json:"decisions"`
	TasksCount  int                    `json:"tasksCount"`
	Meta        map[string]interface{} `json:"meta"`
	Format      Format                 `json:"format"`
	PatientID   string                 `json:"patientId,omitempty"`
	PatientName *string                `json:"patientName"`
}

// Summarize builds the list projection
func (r *Report) Summarize() *Summary {
	s := &Summary{
		ID:        r.ID,
		Title:     r.Title,
		CreatedAt: r.CreatedAt,
		Decisions: []string{},
		Meta:      r.Meta,
		Format:    r.Format,
		PatientID: r.PatientID,
	}
	if s.Meta == nil {
		s.Meta = map[string]interface{}{}
	}
	if s.Format == "" {
		s.Format = FormatSOAP
	}
	if a := r.Analysis; a != nil {
		s.Summary = a.ShortSummary
		if a.Decisions != nil {
			s.Decisions = a.Decisions
		}
		s.TasksCount = len(a.Tasks)
	}
	return s
}

// SearchFields are matched by the ?q= filter on the report list
func (s *Summary) SearchFields() []string {
	name := ""
	if s.PatientName != nil {
		name = *s.PatientName
	}
	return []string{name, s.Title, s.Summary}
}
