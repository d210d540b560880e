package models

// StageResult is one member's contribution to Stage 1: the rendered prompt
// that was sent and the model's response text. Results appear in roster
// order regardless of completion order.
type StageResult struct {
	MemberID string `json:"member_id"`
	Title    string `json:"display_title"`
	Model    string `json:"model"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// RankingResult is one member's Stage 2 evaluation: the full raw text plus
// the label sequence extracted from it. Parsed may be empty when the text
// was unparseable; that is not an error.
type RankingResult struct {
	MemberID string   `json:"member_id"`
	Title    string   `json:"display_title"`
	Model    string   `json:"model"`
	Prompt   string   `json:"prompt"`
	Raw      string   `json:"ranking"`
	Parsed   []string `json:"parsed_ranking"`
}

// LabelTarget identifies the member behind an anonymous label.
type LabelTarget struct {
	MemberID string `json:"member_id"`
	Title    string `json:"display_title"`
	Model    string `json:"model"`
}

// LabelMap is the anonymization bijection built once at the start of
// Stage 2. Labels ("Response A", "Response B", ...) are assigned in roster
// order over Stage 1 survivors, so the mapping is reproducible given the
// same surviving set. It is never mutated after construction.
type LabelMap map[string]LabelTarget

// AggregateEntry is the consensus placement of one Stage 1 response.
// AverageRank is the mean 1-based position across the rankings that
// mention the response; rankings that omit it contribute nothing.
// VoteCount is the number of rankings that mentioned it.
type AggregateEntry struct {
	Title       string  `json:"display_title"`
	Model       string  `json:"model"`
	AverageRank float64 `json:"average_rank"`
	VoteCount   int     `json:"vote_count"`
}

// FinalResult is the chairman's Stage 3 synthesis.
type FinalResult struct {
	Title    string `json:"display_title"`
	Model    string `json:"model"`
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

// StageTwoOutcome groups the Stage 2 rankings with the label map needed to
// de-anonymize them.
type StageTwoOutcome struct {
	Rankings []RankingResult `json:"rankings"`
	LabelMap LabelMap        `json:"label_map"`
}

// DeliberationOutcome is the complete result of one deliberation. It is
// transient per invocation; the orchestrator holds no state across calls.
type DeliberationOutcome struct {
	Stage1    []StageResult    `json:"stage1"`
	Stage2    StageTwoOutcome  `json:"stage2"`
	Stage3    FinalResult      `json:"stage3"`
	Aggregate []AggregateEntry `json:"aggregate"`
}
