// Package roster manages the persisted board member configurations and
// the chairman designation, scoped per user.
package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boardroom-ai/boardroom/internal/models"
)

// ErrMemberNotFound is returned when a member ID does not match any
// configured board member for the user.
var ErrMemberNotFound = errors.New("board member not found")

// fileData is the on-disk shape of members.json. Chairman holds the ID of
// the designated chairman, or "" when the configured default model chairs.
type fileData struct {
	Members  []models.BoardMember `json:"agents"`
	Chairman string               `json:"chairman,omitempty"`
}

// Store reads and writes <dataDir>/users/<userID>/members.json. A missing
// or corrupted file yields the default board; defaults are only persisted
// on the first mutation or an explicit Initialize.
type Store struct {
	dataDir string
	mu      sync.Mutex
}

// NewStore creates a Store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.dataDir, "users", userID, "members.json")
}

func (s *Store) load(userID string) (*fileData, error) {
	raw, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return defaultData(), nil
		}
		return nil, fmt.Errorf("reading board members: %w", err)
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return defaultData(), nil
	}
	return &data, nil
}

func (s *Store) save(userID string, data *fileData) error {
	dir := filepath.Dir(s.path(userID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating user directory: %w", err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding board members: %w", err)
	}
	if err := os.WriteFile(s.path(userID), raw, 0644); err != nil {
		return fmt.Errorf("writing board members: %w", err)
	}
	return nil
}

// List returns all configured board members.
func (s *Store) List(userID string) ([]models.BoardMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	return data.Members, nil
}

// Get returns one board member by ID.
func (s *Store) Get(userID, memberID string) (*models.BoardMember, error) {
	members, err := s.List(userID)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].ID == memberID {
			return &members[i], nil
		}
	}
	return nil, ErrMemberNotFound
}

// Create adds a new board member and persists the roster.
func (s *Store) Create(userID, title, role, model string, prompts map[string]string, active bool) (*models.BoardMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	member := models.BoardMember{
		ID:        uuid.NewString(),
		Title:     title,
		Role:      role,
		Model:     model,
		Prompts:   prompts,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	data.Members = append(data.Members, member)

	if err := s.save(userID, data); err != nil {
		return nil, err
	}
	return &member, nil
}

// MemberUpdate holds the mutable fields of a board member. Nil fields are
// left unchanged; ID and CreatedAt cannot be changed.
type MemberUpdate struct {
	Title   *string
	Role    *string
	Model   *string
	Prompts map[string]string
	Active  *bool
}

// Update applies a partial update to one board member.
func (s *Store) Update(userID, memberID string, upd MemberUpdate) (*models.BoardMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(userID)
	if err != nil {
		return nil, err
	}

	for i := range data.Members {
		m := &data.Members[i]
		if m.ID != memberID {
			continue
		}
		if upd.Title != nil {
			m.Title = *upd.Title
		}
		if upd.Role != nil {
			m.Role = *upd.Role
		}
		if upd.Model != nil {
			m.Model = *upd.Model
		}
		if upd.Prompts != nil {
			m.Prompts = upd.Prompts
		}
		if upd.Active != nil {
			m.Active = *upd.Active
		}
		m.UpdatedAt = time.Now().UTC()

		if err := s.save(userID, data); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, ErrMemberNotFound
}

// Delete removes one board member. Deleting the designated chairman clears
// the designation.
func (s *Store) Delete(userID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(userID)
	if err != nil {
		return err
	}

	kept := data.Members[:0]
	found := false
	for _, m := range data.Members {
		if m.ID == memberID {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return ErrMemberNotFound
	}
	data.Members = kept
	if data.Chairman == memberID {
		data.Chairman = ""
	}
	return s.save(userID, data)
}

// SetChairman designates a member as chairman. An empty memberID clears
// the designation so the configured default chairman model is used.
func (s *Store) SetChairman(userID, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(userID)
	if err != nil {
		return err
	}

	if memberID != "" {
		found := false
		for i := range data.Members {
			if data.Members[i].ID == memberID {
				found = true
				break
			}
		}
		if !found {
			return ErrMemberNotFound
		}
	}
	data.Chairman = memberID
	return s.save(userID, data)
}

// Chairman returns the designated chairman, or nil when the configured
// default model should chair.
func (s *Store) Chairman(userID string) (*models.BoardMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load(userID)
	if err != nil {
		return nil, err
	}
	if data.Chairman == "" {
		return nil, nil
	}
	for i := range data.Members {
		if data.Members[i].ID == data.Chairman {
			return &data.Members[i], nil
		}
	}
	return nil, nil
}

// Initialize persists the default board for a user that has none and
// returns the resulting members. An existing roster is returned untouched.
func (s *Store) Initialize(userID string) ([]models.BoardMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(userID)); err == nil {
		data, err := s.load(userID)
		if err != nil {
			return nil, err
		}
		return data.Members, nil
	}

	data := defaultData()
	if err := s.save(userID, data); err != nil {
		return nil, err
	}
	return data.Members, nil
}

// Snapshot builds the read-only roster handed to the orchestrator: active
// members plus a chairman. Without a designated chairman, a synthetic one
// backed by defaultChairmanModel is used.
func (s *Store) Snapshot(userID, defaultChairmanModel string) (models.Roster, error) {
	members, err := s.List(userID)
	if err != nil {
		return models.Roster{}, err
	}
	chairman, err := s.Chairman(userID)
	if err != nil {
		return models.Roster{}, err
	}
	if chairman == nil {
		chairman = &models.BoardMember{
			ID:     "chairman-default",
			Title:  "Chairman",
			Model:  defaultChairmanModel,
			Active: true,
		}
	}
	return models.Roster{Members: members, Chairman: chairman}, nil
}
