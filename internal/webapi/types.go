package webapi

import "github.com/boardroom-ai/boardroom/internal/models"

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ErrorResponse is a standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// SendMessageRequest submits a user message to a conversation.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse is the non-streaming deliberation result.
type MessageResponse struct {
	Stage1   []models.StageResult     `json:"stage1"`
	Stage2   []models.RankingResult   `json:"stage2"`
	Stage3   models.FinalResult       `json:"stage3"`
	Metadata models.StageTwoEventData `json:"metadata"`
}

// CreateMemberRequest adds a board member.
type CreateMemberRequest struct {
	Title   string            `json:"title"`
	Role    string            `json:"role"`
	Model   string            `json:"model"`
	Prompts map[string]string `json:"prompts,omitempty"`
	Active  *bool             `json:"active,omitempty"`
}

// UpdateMemberRequest partially updates a board member. Nil fields are
// left unchanged.
type UpdateMemberRequest struct {
	Title   *string           `json:"title,omitempty"`
	Role    *string           `json:"role,omitempty"`
	Model   *string           `json:"model,omitempty"`
	Prompts map[string]string `json:"prompts,omitempty"`
	Active  *bool             `json:"active,omitempty"`
}

// UpdatePromptRequest replaces a stage's prompt template.
type UpdatePromptRequest struct {
	Template string `json:"template"`
}

// ModelsResponse lists the configured council and chairman models.
type ModelsResponse struct {
	Council  []string `json:"council"`
	Chairman string   `json:"chairman"`
	All      []string `json:"all"`
}

// ChairmanResponse wraps the current chairman designation.
type ChairmanResponse struct {
	Chairman *models.BoardMember `json:"chairman"`
}

// InitializeResponse is returned when seeding the default board.
type InitializeResponse struct {
	Members []models.BoardMember `json:"agents"`
	Count   int                  `json:"count"`
}

// SuccessResponse acknowledges a mutation with no other payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}
