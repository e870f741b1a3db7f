package dto

// CreateFeedbackRequest is the body of POST /api/feedback.
// Rating is a pointer so a missing rating can be told apart from 0.
type CreateFeedbackRequest struct {
	Rating  *float64 `json:"rating"`
	Comment string   `json:"comment"`
}

type CreateFeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id"`
}
