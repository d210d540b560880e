package models

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. User messages carry Content;
// assistant messages carry the three deliberation stages.
type Message struct {
	Role      string           `json:"role"`
	Content   string           `json:"content,omitempty"`
	Stage1    []StageResult    `json:"stage1,omitempty"`
	Stage2    []RankingResult  `json:"stage2,omitempty"`
	Stage3    *FinalResult     `json:"stage3,omitempty"`
	LabelMap  LabelMap         `json:"label_to_member,omitempty"`
	Aggregate []AggregateEntry `json:"aggregate_rankings,omitempty"`
}

// Conversation is a persisted exchange between a user and the board.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
}

// ConversationMeta is the list-view projection of a conversation.
type ConversationMeta struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
}
