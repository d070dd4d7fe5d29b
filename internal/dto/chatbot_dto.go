package dto

type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=2000"`
	SessionId string `json:"session_id,omitempty" validate:"omitempty,max=64"`
	UserId    string `json:"user_id,omitempty" validate:"omitempty,max=64"`
}

type ChatResponse struct {
	Response  string         `json:"response"`
	Sources   []string       `json:"sources"`
	Category  string         `json:"category"`
	SessionId string         `json:"session_id"`
	Metadata  map[string]any `json:"metadata"`
}

type ClassifyRequest struct {
	Message   string `json:"message" validate:"required,max=2000"`
	SessionId string `json:"session_id,omitempty" validate:"omitempty,max=64"`
}

type ClassifyResponse struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	HasContext  bool   `json:"has_context"`
	SessionId   string `json:"session_id,omitempty"`
}
