package models

import "time"

// Stage identifiers used for prompt resolution and overrides.
const (
	StageOne   = "stage1"
	StageTwo   = "stage2"
	StageThree = "stage3"
)

// Stages lists all deliberation stages in order.
var Stages = []string{StageOne, StageTwo, StageThree}

// BoardMember is a configured council identity: a display title, a backend
// model, and optional per-stage prompt overrides. The deliberation core
// treats members as read-only; mutation happens through the roster store.
type BoardMember struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Role      string            `json:"role,omitempty"`
	Model     string            `json:"model"`
	Prompts   map[string]string `json:"prompts,omitempty"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at,omitzero"`
	UpdatedAt time.Time         `json:"updated_at,omitzero"`
}

// DisplayTitle returns the member's title, falling back to the model
// identifier when no title is configured.
func (m *BoardMember) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Model
}

// StagePrompt returns the member-specific prompt override for a stage, if any.
func (m *BoardMember) StagePrompt(stage string) (string, bool) {
	t, ok := m.Prompts[stage]
	return t, ok
}

// Roster is the read-only snapshot of participants handed to the
// orchestrator at deliberation start. Members are in configured order;
// that order is stable for the whole deliberation. Chairman may be nil,
// in which case the configured default chairman model is used.
type Roster struct {
	Members  []BoardMember
	Chairman *BoardMember
}
