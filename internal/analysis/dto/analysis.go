package dto

// AnalyzeRequest is the body of POST /api/chat/analyze
type AnalyzeRequest struct {
	Text   string `json:"text"`
	Format string `json:"format"`
	Model  string `json:"model"`
}
