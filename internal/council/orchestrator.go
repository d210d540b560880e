// Package council runs the three-stage board deliberation: independent
// first-pass answers, anonymized peer ranking, and a chairman synthesis.
package council

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/boardroom-ai/boardroom/internal/gateway"
	"github.com/boardroom-ai/boardroom/internal/models"
	"github.com/boardroom-ai/boardroom/internal/prompts"
	"github.com/boardroom-ai/boardroom/internal/ranking"
	"github.com/boardroom-ai/boardroom/internal/template"
)

// EventListener receives deliberation progress events. Listeners are
// invoked synchronously in registration order; a slow listener slows the
// deliberation, which is what a streaming consumer wants.
type EventListener func(event models.Event)

// DeliberationError is the terminal failure of a deliberation. The same
// code has already been emitted on the event stream when this is returned.
type DeliberationError struct {
	Code    string
	Message string
}

func (e *DeliberationError) Error() string {
	return fmt.Sprintf("deliberation failed (%s): %s", e.Code, e.Message)
}

// Orchestrator runs deliberations against a fixed roster. It holds no
// per-deliberation state; a single Orchestrator may run deliberations
// concurrently.
type Orchestrator struct {
	gw       gateway.Gateway
	roster   models.Roster
	resolver *prompts.Resolver
	logger   *slog.Logger

	listenerMu sync.Mutex
	listeners  []EventListener
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithResolver sets the prompt resolver. Without it, built-in stage
// defaults are used.
func WithResolver(r *prompts.Resolver) Option {
	return func(o *Orchestrator) {
		o.resolver = r
	}
}

// WithLogger sets the structured logger used for per-member failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// NewOrchestrator creates an orchestrator for one roster. The roster must
// have at least one active member and a chairman.
func NewOrchestrator(gw gateway.Gateway, roster models.Roster, opts ...Option) (*Orchestrator, error) {
	active := 0
	for i := range roster.Members {
		if roster.Members[i].Active {
			active++
		}
	}
	if active == 0 {
		return nil, fmt.Errorf("roster has no active members")
	}
	if roster.Chairman == nil {
		return nil, fmt.Errorf("roster has no chairman")
	}

	o := &Orchestrator{
		gw:       gw,
		roster:   roster,
		resolver: prompts.NewResolver(nil),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// OnEvent registers a progress listener.
func (o *Orchestrator) OnEvent(listener EventListener) {
	o.listenerMu.Lock()
	defer o.listenerMu.Unlock()
	o.listeners = append(o.listeners, listener)
}

func (o *Orchestrator) notify(event models.Event) {
	o.listenerMu.Lock()
	listeners := make([]EventListener, len(o.listeners))
	copy(listeners, o.listeners)
	o.listenerMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Deliberate runs all three stages for one user query. history is the
// prior conversation, oldest first; it may be empty. On terminal failure
// the error event has already been emitted and the returned error is a
// *DeliberationError with the same code.
func (o *Orchestrator) Deliberate(ctx context.Context, query string, history []models.Message) (*models.DeliberationOutcome, error) {
	members := o.activeMembers()

	// Stage 1: every member answers the query independently.
	o.notify(models.Event{Type: models.EventStage1Start})

	stage1Vars := map[string]string{
		prompts.VarUserQuery: query,
	}
	calls := make([]memberCall, len(members))
	for i, m := range members {
		calls[i] = memberCall{
			member: m,
			prompt: withHistory(history, template.Render(o.resolver.Resolve(models.StageOne, m), stage1Vars)),
		}
	}

	replies, errs := o.fanOut(ctx, models.StageOne, calls)

	var stage1 []models.StageResult
	var survivors []*models.BoardMember
	quotaSeen := false
	for i, m := range members {
		if errs[i] != nil {
			if gateway.IsQuota(errs[i]) {
				quotaSeen = true
			}
			continue
		}
		stage1 = append(stage1, models.StageResult{
			MemberID: m.ID,
			Title:    m.DisplayTitle(),
			Model:    m.Model,
			Prompt:   calls[i].prompt,
			Response: replies[i].Content,
		})
		survivors = append(survivors, m)
	}

	if len(survivors) == 0 {
		code := models.ErrCodeAllMembersFailed
		if quotaSeen {
			code = models.ErrCodeCreditsExhausted
		}
		return nil, o.fail(code, "all board members failed to respond")
	}

	o.notify(models.Event{Type: models.EventStage1Complete, Data: stage1})

	// Stage 2: anonymize the surviving responses and have each survivor
	// rank them. Labels are assigned in roster order over survivors, so
	// the mapping is reproducible for a given surviving set.
	o.notify(models.Event{Type: models.EventStage2Start})

	labelMap := make(models.LabelMap, len(survivors))
	labelOrder := make([]string, len(survivors))
	for i, m := range survivors {
		label := "Response " + string(rune('A'+i))
		labelOrder[i] = label
		labelMap[label] = models.LabelTarget{
			MemberID: m.ID,
			Title:    m.DisplayTitle(),
			Model:    m.Model,
		}
	}

	stage2Vars := map[string]string{
		prompts.VarUserQuery:     query,
		prompts.VarResponsesText: responsesText(labelOrder, stage1),
	}
	calls = make([]memberCall, len(survivors))
	for i, m := range survivors {
		calls[i] = memberCall{
			member: m,
			prompt: template.Render(o.resolver.Resolve(models.StageTwo, m), stage2Vars),
		}
	}

	replies, errs = o.fanOut(ctx, models.StageTwo, calls)

	var rankings []models.RankingResult
	for i, m := range survivors {
		if errs[i] != nil {
			continue
		}
		raw := replies[i].Content
		rankings = append(rankings, models.RankingResult{
			MemberID: m.ID,
			Title:    m.DisplayTitle(),
			Model:    m.Model,
			Prompt:   calls[i].prompt,
			Raw:      raw,
			Parsed:   ranking.Filter(ranking.Parse(raw), labelMap),
		})
	}

	aggregate := ranking.Aggregate(rankings, labelMap, labelOrder)

	o.notify(models.Event{
		Type: models.EventStage2Complete,
		Data: rankings,
		Metadata: models.StageTwoEventData{
			LabelMap:  labelMap,
			Aggregate: aggregate,
		},
	})

	// Stage 3: the chairman synthesizes a final answer from the
	// de-anonymized record.
	o.notify(models.Event{Type: models.EventStage3Start})

	chairman := o.roster.Chairman
	stage3Vars := map[string]string{
		prompts.VarUserQuery:     query,
		prompts.VarStage1Text:    stage1Text(stage1),
		prompts.VarStage2Text:    stage2Text(rankings),
		prompts.VarAggregateText: aggregateText(aggregate),
	}
	stage3Prompt := withHistory(history, template.Render(o.resolver.Resolve(models.StageThree, chairman), stage3Vars))

	reply, err := o.gw.Query(ctx, chairman.Model, stage3Prompt)
	if err != nil {
		o.logger.Error("chairman query failed",
			"model", chairman.Model,
			"error", err)
		code := models.ErrCodeChairmanFailed
		if gateway.IsQuota(err) {
			code = models.ErrCodeCreditsExhausted
		}
		return nil, o.fail(code, "chairman failed to synthesize a final answer")
	}

	stage3 := models.FinalResult{
		Title:    chairman.DisplayTitle(),
		Model:    chairman.Model,
		Prompt:   stage3Prompt,
		Response: reply.Content,
	}
	o.notify(models.Event{Type: models.EventStage3Complete, Data: stage3})

	outcome := &models.DeliberationOutcome{
		Stage1: stage1,
		Stage2: models.StageTwoOutcome{
			Rankings: rankings,
			LabelMap: labelMap,
		},
		Stage3:    stage3,
		Aggregate: aggregate,
	}

	o.notify(models.Event{Type: models.EventComplete})
	return outcome, nil
}

func (o *Orchestrator) fail(code, message string) error {
	o.notify(models.Event{
		Type:      models.EventError,
		Message:   message,
		ErrorCode: code,
	})
	return &DeliberationError{Code: code, Message: message}
}

func (o *Orchestrator) activeMembers() []*models.BoardMember {
	var active []*models.BoardMember
	for i := range o.roster.Members {
		if o.roster.Members[i].Active {
			active = append(active, &o.roster.Members[i])
		}
	}
	return active
}

type memberCall struct {
	member *models.BoardMember
	prompt string
}

// fanOut queries all members concurrently. Results and errors land in
// indexed slots matching calls; each goroutine writes only its own slot.
func (o *Orchestrator) fanOut(ctx context.Context, stage string, calls []memberCall) ([]*gateway.Reply, []error) {
	replies := make([]*gateway.Reply, len(calls))
	errs := make([]error, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(idx int, c memberCall) {
			defer wg.Done()
			reply, err := o.gw.Query(ctx, c.member.Model, c.prompt)
			if err != nil {
				o.logger.Warn("member dropped from deliberation",
					"stage", stage,
					"member", c.member.DisplayTitle(),
					"model", c.member.Model,
					"error", err)
				errs[idx] = err
				return
			}
			replies[idx] = reply
		}(i, call)
	}
	wg.Wait()

	return replies, errs
}

// withHistory prepends prior conversation turns to a rendered prompt.
// Assistant turns contribute their final synthesis only.
func withHistory(history []models.Message, prompt string) string {
	if len(history) == 0 {
		return prompt
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n\n")
	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString("User: ")
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		case models.RoleAssistant:
			if msg.Stage3 != nil {
				b.WriteString("Board: ")
				b.WriteString(msg.Stage3.Response)
				b.WriteString("\n\n")
			}
		}
	}
	b.WriteString("Current request:\n\n")
	b.WriteString(prompt)
	return b.String()
}

func responsesText(labelOrder []string, stage1 []models.StageResult) string {
	var b strings.Builder
	for i, label := range labelOrder {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s:\n%s", label, stage1[i].Response)
	}
	return b.String()
}

func stage1Text(stage1 []models.StageResult) string {
	var b strings.Builder
	for i, sr := range stage1 {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s (%s):\n%s", sr.Title, sr.Model, sr.Response)
	}
	return b.String()
}

func stage2Text(rankings []models.RankingResult) string {
	var b strings.Builder
	for i, rr := range rankings {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s (%s):\n%s", rr.Title, rr.Model, rr.Raw)
	}
	return b.String()
}

func aggregateText(aggregate []models.AggregateEntry) string {
	var b strings.Builder
	for i, entry := range aggregate {
		if i > 0 {
			b.WriteString("\n")
		}
		if entry.VoteCount == 0 {
			fmt.Fprintf(&b, "%d. %s (%s): no votes", i+1, entry.Title, entry.Model)
			continue
		}
		fmt.Fprintf(&b, "%d. %s (%s): average rank %.2f across %d votes",
			i+1, entry.Title, entry.Model, entry.AverageRank, entry.VoteCount)
	}
	return b.String()
}
