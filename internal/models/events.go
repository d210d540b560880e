package models

// EventType identifies a deliberation progress event.
type EventType string

// Progress events, emitted in strict order as each stage boundary is
// crossed. A *_complete event never precedes its *_start, and stages never
// interleave. EventError is terminal.
const (
	EventStage1Start    EventType = "stage1_start"
	EventStage1Complete EventType = "stage1_complete"
	EventStage2Start    EventType = "stage2_start"
	EventStage2Complete EventType = "stage2_complete"
	EventStage3Start    EventType = "stage3_start"
	EventStage3Complete EventType = "stage3_complete"
	EventTitleComplete  EventType = "title_complete"
	EventComplete       EventType = "complete"
	EventError          EventType = "error"
)

// Coarse error codes carried by terminal error events.
const (
	ErrCodeAllMembersFailed = "all_members_failed"
	ErrCodeChairmanFailed   = "chairman_failed"
	ErrCodeCreditsExhausted = "credits_exhausted"
	ErrCodeInternal         = "internal_error"
)

// Event is one unit of the streaming progress protocol. Data carries the
// stage payload for *_complete events and is nil for *_start events.
type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data,omitempty"`
	Metadata  any       `json:"metadata,omitempty"`
	Message   string    `json:"message,omitempty"`
	ErrorCode string    `json:"error_code,omitempty"`
}

// StageTwoEventData is the payload of stage2_complete: the rankings plus
// the metadata a client needs to de-anonymize and display them.
type StageTwoEventData struct {
	LabelMap  LabelMap         `json:"label_to_member"`
	Aggregate []AggregateEntry `json:"aggregate_rankings"`
}
