package cohere

// --- Cohere v1 Chat API Request/Response Types ---
// https://docs.cohere.com/reference/chat

type Request struct {
	Model            string        `json:"model"`
	ChatHistory      []HistoryTurn `json:"chat_history,omitempty"`
	Message          string        `json:"message"`
	PromptTruncation string        `json:"prompt_truncation,omitempty"` // OFF, AUTO
	Temperature      float64       `json:"temperature,omitempty"`
	K                int           `json:"k,omitempty"`
}

// HistoryTurn is one prior exchange entry. Role is USER or CHATBOT.
type HistoryTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type Response struct {
	ID           string     `json:"response_id"`
	GenerationID string     `json:"generation_id"`
	Text         string     `json:"text"`
	TokenCount   TokenCount `json:"token_count"`
}

type TokenCount struct {
	PromptTokens   int `json:"prompt_tokens"`
	ResponseTokens int `json:"response_tokens"`
	TotalTokens    int `json:"total_tokens"`
	BilledTokens   int `json:"billed_tokens"`
}

// ErrorResponse is the body Cohere returns on non-2xx statuses.
type ErrorResponse struct {
	Message string `json:"message"`
}
