// Package store persists conversations as per-user JSON files.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/boardroom-ai/boardroom/internal/models"
)

// ErrConversationNotFound is returned when a conversation ID does not
// match any stored conversation for the user.
var ErrConversationNotFound = errors.New("conversation not found")

// DefaultConversationTitle is the placeholder title until one is generated.
const DefaultConversationTitle = "New Conversation"

// ConversationStore reads and writes conversation JSON files under
// <dataDir>/users/<userID>/conversations/<conversationID>.json.
// Writes are serialized with a store-wide mutex; files are the source of
// truth and nothing is cached between calls.
type ConversationStore struct {
	dataDir string
	mu      sync.Mutex
}

// NewConversationStore creates a store rooted at dataDir.
func NewConversationStore(dataDir string) *ConversationStore {
	return &ConversationStore{dataDir: dataDir}
}

func (s *ConversationStore) userDir(userID string) string {
	return filepath.Join(s.dataDir, "users", userID, "conversations")
}

func (s *ConversationStore) path(userID, conversationID string) string {
	return filepath.Join(s.userDir(userID), conversationID+".json")
}

// Create creates and persists a new empty conversation.
func (s *ConversationStore) Create(userID, conversationID string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := &models.Conversation{
		ID:        conversationID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		Title:     DefaultConversationTitle,
		Messages:  []models.Message{},
	}
	if err := s.write(userID, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get loads one conversation.
func (s *ConversationStore) Get(userID, conversationID string) (*models.Conversation, error) {
	data, err := os.ReadFile(s.path(userID, conversationID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("reading conversation %s: %w", conversationID, err)
	}

	var conv models.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("parsing conversation %s: %w", conversationID, err)
	}
	return &conv, nil
}

// Delete removes one conversation.
func (s *ConversationStore) Delete(userID, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(userID, conversationID))
	if os.IsNotExist(err) {
		return ErrConversationNotFound
	}
	return err
}

// List returns metadata for all of a user's conversations, newest first.
// Corrupted files are skipped.
func (s *ConversationStore) List(userID string) ([]models.ConversationMeta, error) {
	entries, err := os.ReadDir(s.userDir(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return []models.ConversationMeta{}, nil
		}
		return nil, fmt.Errorf("listing conversations: %w", err)
	}

	metas := make([]models.ConversationMeta, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.userDir(userID), e.Name()))
		if err != nil {
			continue
		}
		var conv models.Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			continue
		}
		title := conv.Title
		if title == "" {
			title = DefaultConversationTitle
		}
		metas = append(metas, models.ConversationMeta{
			ID:           conv.ID,
			CreatedAt:    conv.CreatedAt,
			Title:        title,
			MessageCount: len(conv.Messages),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// AppendUserMessage adds a user turn to a conversation.
func (s *ConversationStore) AppendUserMessage(userID, conversationID, content string) error {
	return s.appendMessage(userID, conversationID, models.Message{
		Role:    models.RoleUser,
		Content: content,
	})
}

// AppendOutcome adds an assistant turn holding a complete deliberation.
func (s *ConversationStore) AppendOutcome(userID, conversationID string, outcome *models.DeliberationOutcome) error {
	return s.appendMessage(userID, conversationID, models.Message{
		Role:      models.RoleAssistant,
		Stage1:    outcome.Stage1,
		Stage2:    outcome.Stage2.Rankings,
		Stage3:    &outcome.Stage3,
		LabelMap:  outcome.Stage2.LabelMap,
		Aggregate: outcome.Aggregate,
	})
}

// SetTitle replaces a conversation's title.
func (s *ConversationStore) SetTitle(userID, conversationID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.Get(userID, conversationID)
	if err != nil {
		return err
	}
	conv.Title = title
	return s.write(userID, conv)
}

func (s *ConversationStore) appendMessage(userID, conversationID string, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.Get(userID, conversationID)
	if err != nil {
		return err
	}
	conv.Messages = append(conv.Messages, msg)
	return s.write(userID, conv)
}

// write persists a conversation. Callers hold s.mu.
func (s *ConversationStore) write(userID string, conv *models.Conversation) error {
	if err := os.MkdirAll(s.userDir(userID), 0755); err != nil {
		return fmt.Errorf("creating conversations directory: %w", err)
	}
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding conversation %s: %w", conv.ID, err)
	}
	if err := os.WriteFile(s.path(userID, conv.ID), data, 0644); err != nil {
		return fmt.Errorf("writing conversation %s: %w", conv.ID, err)
	}
	return nil
}
