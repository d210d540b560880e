// Package webapi implements the HTTP API: conversations, deliberations
// (plain and streamed), board member management, and prompt customization.
package webapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/boardroom-ai/boardroom/internal/auth"
	"github.com/boardroom-ai/boardroom/internal/config"
	"github.com/boardroom-ai/boardroom/internal/council"
	"github.com/boardroom-ai/boardroom/internal/gateway"
	"github.com/boardroom-ai/boardroom/internal/models"
	"github.com/boardroom-ai/boardroom/internal/prompts"
	"github.com/boardroom-ai/boardroom/internal/promptstore"
	"github.com/boardroom-ai/boardroom/internal/roster"
	"github.com/boardroom-ai/boardroom/internal/store"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// Handlers holds the HTTP handler methods for the API.
type Handlers struct {
	gw            gateway.Gateway
	conversations *store.ConversationStore
	members       *roster.Store
	promptStore   *promptstore.Store
	cfg           *config.Config
	logger        *slog.Logger
}

// NewHandlers wires the API handlers.
func NewHandlers(gw gateway.Gateway, cfg *config.Config, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	dataDir := cfg.Server.DataDir
	return &Handlers{
		gw:            gw,
		conversations: store.NewConversationStore(dataDir),
		members:       roster.NewStore(dataDir),
		promptStore:   promptstore.NewStore(dataDir),
		cfg:           cfg,
		logger:        logger,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.HandleHealth)

	mux.HandleFunc("GET /api/conversations", h.HandleListConversations)
	mux.HandleFunc("POST /api/conversations", h.HandleCreateConversation)
	mux.HandleFunc("GET /api/conversations/{id}", h.HandleGetConversation)
	mux.HandleFunc("DELETE /api/conversations/{id}", h.HandleDeleteConversation)
	mux.HandleFunc("POST /api/conversations/{id}/message", h.HandleSendMessage)
	mux.HandleFunc("POST /api/conversations/{id}/message/stream", h.HandleSendMessageStream)

	mux.HandleFunc("GET /api/members", h.HandleListMembers)
	mux.HandleFunc("POST /api/members", h.HandleCreateMember)
	mux.HandleFunc("POST /api/members/initialize", h.HandleInitializeMembers)
	mux.HandleFunc("GET /api/members/chairman", h.HandleGetChairman)
	mux.HandleFunc("PUT /api/members/chairman/{id}", h.HandleSetChairman)
	mux.HandleFunc("GET /api/members/{id}", h.HandleGetMember)
	mux.HandleFunc("PUT /api/members/{id}", h.HandleUpdateMember)
	mux.HandleFunc("DELETE /api/members/{id}", h.HandleDeleteMember)

	mux.HandleFunc("GET /api/models", h.HandleModels)

	mux.HandleFunc("GET /api/prompts", h.HandleGetPrompts)
	mux.HandleFunc("PUT /api/prompts/{stage}", h.HandleUpdatePrompt)
	mux.HandleFunc("DELETE /api/prompts/{stage}", h.HandleResetPrompt)
	mux.HandleFunc("DELETE /api/prompts", h.HandleResetAllPrompts)
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "boardroom",
		Version: Version,
	})
}

// HandleListConversations returns conversation metadata, newest first.
func (h *Handlers) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	metas, err := h.conversations.List(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, metas)
}

// HandleCreateConversation creates an empty conversation.
func (h *Handlers) HandleCreateConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.conversations.Create(auth.UserID(r.Context()), uuid.NewString())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// HandleGetConversation returns one conversation with all messages.
func (h *Handlers) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.conversations.Get(auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// HandleDeleteConversation removes a conversation.
func (h *Handlers) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.conversations.Delete(auth.UserID(r.Context()), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleSendMessage runs a full deliberation and returns the complete
// result in one response.
func (h *Handlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	conversationID := r.PathValue("id")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	conv, err := h.conversations.Get(userID, conversationID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	history := conv.Messages
	isFirst := len(history) == 0

	if err := h.conversations.AppendUserMessage(userID, conversationID, req.Content); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if isFirst {
		title := h.titler().Generate(r.Context(), req.Content)
		if err := h.conversations.SetTitle(userID, conversationID, title); err != nil {
			h.logger.Warn("setting conversation title failed", "conversation", conversationID, "error", err)
		}
	}

	orch, err := h.orchestrator(userID, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	outcome, err := orch.Deliberate(r.Context(), req.Content, history)
	if err != nil {
		writeDeliberationError(w, err)
		return
	}

	if err := h.conversations.AppendOutcome(userID, conversationID, outcome); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Stage1: outcome.Stage1,
		Stage2: outcome.Stage2.Rankings,
		Stage3: outcome.Stage3,
		Metadata: models.StageTwoEventData{
			LabelMap:  outcome.Stage2.LabelMap,
			Aggregate: outcome.Aggregate,
		},
	})
}

// HandleListMembers returns all board members; ?active_only=true filters
// to active ones.
func (h *Handlers) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.List(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if r.URL.Query().Get("active_only") == "true" {
		active := make([]models.BoardMember, 0, len(members))
		for _, m := range members {
			if m.Active {
				active = append(active, m)
			}
		}
		members = active
	}
	writeJSON(w, http.StatusOK, members)
}

// HandleCreateMember adds a board member.
func (h *Handlers) HandleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "title and model are required")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	member, err := h.members.Create(auth.UserID(r.Context()), req.Title, req.Role, req.Model, req.Prompts, active)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// HandleInitializeMembers seeds the default board for the user.
func (h *Handlers) HandleInitializeMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.members.Initialize(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, InitializeResponse{Members: members, Count: len(members)})
}

// HandleGetChairman returns the designated chairman, or null when the
// configured default model chairs.
func (h *Handlers) HandleGetChairman(w http.ResponseWriter, r *http.Request) {
	chairman, err := h.members.Chairman(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ChairmanResponse{Chairman: chairman})
}

// HandleSetChairman designates a chairman; the ID "default" clears the
// designation.
func (h *Handlers) HandleSetChairman(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "default" {
		id = ""
	}
	if err := h.members.SetChairman(auth.UserID(r.Context()), id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleGetMember returns one board member.
func (h *Handlers) HandleGetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.members.Get(auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// HandleUpdateMember partially updates a board member.
func (h *Handlers) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	member, err := h.members.Update(auth.UserID(r.Context()), r.PathValue("id"), roster.MemberUpdate{
		Title:   req.Title,
		Role:    req.Role,
		Model:   req.Model,
		Prompts: req.Prompts,
		Active:  req.Active,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// HandleDeleteMember removes a board member.
func (h *Handlers) HandleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.members.Delete(auth.UserID(r.Context()), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleModels lists the configured council and chairman models.
func (h *Handlers) HandleModels(w http.ResponseWriter, _ *http.Request) {
	council := h.cfg.Council.Models
	chairman := h.cfg.Council.ChairmanModel

	all := slices.Clone(council)
	if !slices.Contains(all, chairman) {
		all = append(all, chairman)
	}
	writeJSON(w, http.StatusOK, ModelsResponse{
		Council:  council,
		Chairman: chairman,
		All:      all,
	})
}

// HandleGetPrompts returns the effective prompt configuration; ?model=
// resolves the templates one specific model would receive.
func (h *Handlers) HandleGetPrompts(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	model := r.URL.Query().Get("model")
	if model == "" {
		writeJSON(w, http.StatusOK, h.promptStore.All(userID))
		return
	}

	resolver := prompts.NewResolver(h.promptStore.ForUser(userID))
	member := &models.BoardMember{Model: model}
	resolved := make(map[string]string, len(models.Stages))
	for _, stage := range models.Stages {
		resolved[stage] = resolver.Resolve(stage, member)
	}
	writeJSON(w, http.StatusOK, resolved)
}

// HandleUpdatePrompt replaces a stage's template; ?model= scopes it to
// one model.
func (h *Handlers) HandleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	stage := r.PathValue("stage")
	if !slices.Contains(models.Stages, stage) {
		writeError(w, http.StatusBadRequest, "invalid stage")
		return
	}

	var req UpdatePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Template == "" {
		writeError(w, http.StatusBadRequest, "template is required")
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.promptStore.Update(userID, stage, req.Template, r.URL.Query().Get("model")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.promptStore.All(userID))
}

// HandleResetPrompt restores a stage's built-in template; ?model= resets
// only that model's override.
func (h *Handlers) HandleResetPrompt(w http.ResponseWriter, r *http.Request) {
	stage := r.PathValue("stage")
	if !slices.Contains(models.Stages, stage) {
		writeError(w, http.StatusBadRequest, "invalid stage")
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.promptStore.Reset(userID, stage, r.URL.Query().Get("model")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.promptStore.All(userID))
}

// HandleResetAllPrompts removes every customization for the user.
func (h *Handlers) HandleResetAllPrompts(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if err := h.promptStore.ResetAll(userID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.promptStore.All(userID))
}

// orchestrator builds a per-request orchestrator for the user's roster.
// Extra options let the stream handler attach its event listener before
// the deliberation starts.
func (h *Handlers) orchestrator(userID string, listener council.EventListener) (*council.Orchestrator, error) {
	snapshot, err := h.members.Snapshot(userID, h.cfg.Council.ChairmanModel)
	if err != nil {
		return nil, err
	}
	orch, err := council.NewOrchestrator(h.gw, snapshot,
		council.WithResolver(prompts.NewResolver(h.promptStore.ForUser(userID))),
		council.WithLogger(h.logger),
	)
	if err != nil {
		return nil, err
	}
	if listener != nil {
		orch.OnEvent(listener)
	}
	return orch, nil
}

func (h *Handlers) titler() *council.Titler {
	return council.NewTitler(h.gw, h.cfg.Council.TitleModel, h.logger)
}

// CORSMiddleware wraps a handler with CORS headers. With an empty allowed
// list no CORS header is set (same-origin only).
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, roster.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, "board member not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeDeliberationError(w http.ResponseWriter, err error) {
	var dErr *council.DeliberationError
	if errors.As(err, &dErr) {
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: dErr.Message, Code: http.StatusBadGateway})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
