package webapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/boardroom-ai/boardroom/internal/auth"
	"github.com/boardroom-ai/boardroom/internal/council"
	"github.com/boardroom-ai/boardroom/internal/models"
	"github.com/boardroom-ai/boardroom/internal/store"
)

// HandleSendMessageStream runs a deliberation and streams progress events
// as Server-Sent Events. Title generation for a first message runs
// concurrently with the deliberation; its event is emitted after
// stage3_complete and before the final complete event.
func (h *Handlers) HandleSendMessageStream(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	conversationID := r.PathValue("id")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	conv, err := h.conversations.Get(userID, conversationID)
	if err != nil {
		if errors.Is(err, store.ErrConversationNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	history := conv.Messages
	isFirst := len(history) == 0

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sse := &sseWriter{w: w, flusher: flusher}

	if err := h.conversations.AppendUserMessage(userID, conversationID, req.Content); err != nil {
		sse.write(models.Event{Type: models.EventError, Message: err.Error(), ErrorCode: models.ErrCodeInternal})
		return
	}

	// Race title generation against the deliberation.
	var title string
	g, ctx := errgroup.WithContext(r.Context())
	if isFirst {
		g.Go(func() error {
			title = h.titler().Generate(ctx, req.Content)
			return nil
		})
	}

	// Forward every orchestrator event except the terminal complete, which
	// is written after the outcome is persisted and the title has landed.
	orch, err := h.orchestrator(userID, func(e models.Event) {
		if e.Type == models.EventComplete {
			return
		}
		sse.write(e)
	})
	if err != nil {
		sse.write(models.Event{Type: models.EventError, Message: err.Error(), ErrorCode: models.ErrCodeInternal})
		return
	}

	outcome, err := orch.Deliberate(ctx, req.Content, history)
	if err != nil {
		// The orchestrator already emitted its own error event; anything
		// else is an internal failure that still needs one.
		var dErr *council.DeliberationError
		if !errors.As(err, &dErr) {
			sse.write(models.Event{Type: models.EventError, Message: err.Error(), ErrorCode: models.ErrCodeInternal})
		}
		return
	}

	_ = g.Wait()
	if isFirst {
		if err := h.conversations.SetTitle(userID, conversationID, title); err != nil {
			h.logger.Warn("setting conversation title failed", "conversation", conversationID, "error", err)
		}
		sse.write(models.Event{Type: models.EventTitleComplete, Data: map[string]string{"title": title}})
	}

	if err := h.conversations.AppendOutcome(userID, conversationID, outcome); err != nil {
		sse.write(models.Event{Type: models.EventError, Message: err.Error(), ErrorCode: models.ErrCodeInternal})
		return
	}

	sse.write(models.Event{Type: models.EventComplete})
}

// sseWriter frames events as SSE data lines and flushes after each one so
// clients see stage boundaries as they happen.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseWriter) write(event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = s.w.Write([]byte("data: "))
	_, _ = s.w.Write(payload)
	_, _ = s.w.Write([]byte("\n\n"))
	s.flusher.Flush()
}
