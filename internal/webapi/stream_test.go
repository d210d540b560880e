package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/boardroom-ai/boardroom/internal/config"
	"github.com/boardroom-ai/boardroom/internal/gateway"
	"github.com/boardroom-ai/boardroom/internal/models"
)

func parseSSE(t *testing.T, body string) []models.Event {
	t.Helper()
	var events []models.Event
	for _, line := range strings.Split(body, "\n") {
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var e models.Event
		require.NoError(t, json.Unmarshal([]byte(payload), &e))
		events = append(events, e)
	}
	return events
}

func streamTypes(events []models.Event) []models.EventType {
	types := make([]models.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestHandleSendMessageStream(t *testing.T) {
	cfg := config.New()
	cfg.Server.DataDir = t.TempDir()
	gw := scriptedGateway(t, cfg)

	mux := http.NewServeMux()
	NewHandlers(gw, cfg, nil).RegisterRoutes(mux)

	rec := doJSON(t, mux, http.MethodPost, "/api/conversations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conv := decode[models.Conversation](t, rec)

	path := fmt.Sprintf("/api/conversations/%s/message/stream", conv.ID)
	rec = doJSON(t, mux, http.MethodPost, path, SendMessageRequest{Content: "should we expand?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSE(t, rec.Body.String())
	require.Equal(t, []models.EventType{
		models.EventStage1Start,
		models.EventStage1Complete,
		models.EventStage2Start,
		models.EventStage2Complete,
		models.EventStage3Start,
		models.EventStage3Complete,
		models.EventTitleComplete,
		models.EventComplete,
	}, streamTypes(events))

	// title event carries the generated title
	titleData, ok := events[6].Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Expansion Question", titleData["title"])

	// the deliberation was persisted before the complete event
	rec = doJSON(t, mux, http.MethodGet, "/api/conversations/"+conv.ID, nil)
	stored := decode[models.Conversation](t, rec)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, "Expansion Question", stored.Title)

	// a second message in the same conversation emits no title event
	rec = doJSON(t, mux, http.MethodPost, path, SendMessageRequest{Content: "and after that?"})
	require.Equal(t, http.StatusOK, rec.Code)
	events = parseSSE(t, rec.Body.String())
	for _, e := range events {
		assert.NotEqual(t, models.EventTitleComplete, e.Type)
	}
	assert.Equal(t, models.EventComplete, events[len(events)-1].Type)
}

func TestHandleSendMessageStreamErrors(t *testing.T) {
	t.Run("UnknownConversation", func(t *testing.T) {
		mux, _ := newTestAPI(t, nil)
		rec := doJSON(t, mux, http.MethodPost, "/api/conversations/missing/message/stream", SendMessageRequest{Content: "hi"})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("AllMembersFail", func(t *testing.T) {
		cfg := config.New()
		cfg.Server.DataDir = t.TempDir()

		ctrl := gomock.NewController(t)
		gw := gateway.NewMockGateway(ctrl)
		gw.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, model, _ string) (*gateway.Reply, error) {
				if model == cfg.Council.TitleModel {
					return &gateway.Reply{Content: "Title"}, nil
				}
				return nil, &gateway.CallError{Kind: gateway.FailureHTTP, Model: model, Status: 502}
			}).AnyTimes()

		mux := http.NewServeMux()
		NewHandlers(gw, cfg, nil).RegisterRoutes(mux)

		rec := doJSON(t, mux, http.MethodPost, "/api/conversations", nil)
		conv := decode[models.Conversation](t, rec)

		path := fmt.Sprintf("/api/conversations/%s/message/stream", conv.ID)
		rec = doJSON(t, mux, http.MethodPost, path, SendMessageRequest{Content: "hi"})
		require.Equal(t, http.StatusOK, rec.Code)

		events := parseSSE(t, rec.Body.String())
		last := events[len(events)-1]
		assert.Equal(t, models.EventError, last.Type)
		assert.Equal(t, models.ErrCodeAllMembersFailed, last.ErrorCode)
	})
}
