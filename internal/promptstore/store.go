// Package promptstore persists per-user prompt template customizations:
// stage defaults the operator has replaced, and per-model overrides.
package promptstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/boardroom-ai/boardroom/internal/models"
	"github.com/boardroom-ai/boardroom/internal/prompts"
)

// Overrides is the on-disk and API shape of a user's customizations.
// Defaults maps stage to a replacement default template; Models maps
// model to stage to an override template.
type Overrides struct {
	Defaults map[string]string            `json:"defaults"`
	Models   map[string]map[string]string `json:"models"`
}

func emptyOverrides() *Overrides {
	return &Overrides{
		Defaults: map[string]string{},
		Models:   map[string]map[string]string{},
	}
}

// Store reads and writes <dataDir>/users/<userID>/prompts.json. A missing
// or corrupted file yields an empty override set.
type Store struct {
	dataDir string
	mu      sync.Mutex
}

// NewStore creates a Store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) path(userID string) string {
	return filepath.Join(s.dataDir, "users", userID, "prompts.json")
}

func (s *Store) load(userID string) *Overrides {
	raw, err := os.ReadFile(s.path(userID))
	if err != nil {
		return emptyOverrides()
	}

	// Detect the legacy flat format, where stage templates were stored at
	// the top level, and migrate it in memory.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return emptyOverrides()
	}
	_, hasDefaults := probe["defaults"]
	_, hasModels := probe["models"]
	if !hasDefaults && !hasModels && len(probe) > 0 {
		var flat map[string]string
		if err := json.Unmarshal(raw, &flat); err != nil {
			return emptyOverrides()
		}
		return &Overrides{Defaults: flat, Models: map[string]map[string]string{}}
	}

	var ov Overrides
	if err := json.Unmarshal(raw, &ov); err != nil {
		return emptyOverrides()
	}
	if ov.Defaults == nil {
		ov.Defaults = map[string]string{}
	}
	if ov.Models == nil {
		ov.Models = map[string]map[string]string{}
	}
	return &ov
}

func (s *Store) save(userID string, ov *Overrides) error {
	dir := filepath.Dir(s.path(userID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating user directory: %w", err)
	}
	raw, err := json.MarshalIndent(ov, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding prompt overrides: %w", err)
	}
	if err := os.WriteFile(s.path(userID), raw, 0644); err != nil {
		return fmt.Errorf("writing prompt overrides: %w", err)
	}
	return nil
}

// All returns the user's effective configuration: built-in defaults with
// customized stages layered over them, plus the raw per-model overrides.
func (s *Store) All(userID string) *Overrides {
	s.mu.Lock()
	defer s.mu.Unlock()

	custom := s.load(userID)
	effective := emptyOverrides()
	for _, stage := range models.Stages {
		if t, ok := custom.Defaults[stage]; ok {
			effective.Defaults[stage] = t
		} else {
			effective.Defaults[stage] = prompts.Default(stage)
		}
	}
	effective.Models = custom.Models
	return effective
}

// Update sets the template for a stage. A non-empty model sets a
// model-specific override; otherwise the stage default is replaced.
func (s *Store) Update(userID, stage, tmpl, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	custom := s.load(userID)
	if model != "" {
		if custom.Models[model] == nil {
			custom.Models[model] = map[string]string{}
		}
		custom.Models[model][stage] = tmpl
	} else {
		custom.Defaults[stage] = tmpl
	}
	return s.save(userID, custom)
}

// Reset removes one customization, restoring the built-in behavior. A
// non-empty model removes the model-specific override for the stage.
func (s *Store) Reset(userID, stage, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	custom := s.load(userID)
	if model != "" {
		if m, ok := custom.Models[model]; ok {
			delete(m, stage)
			if len(m) == 0 {
				delete(custom.Models, model)
			}
		}
	} else {
		delete(custom.Defaults, stage)
	}
	return s.save(userID, custom)
}

// ResetAll removes every customization for the user.
func (s *Store) ResetAll(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(userID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing prompt overrides: %w", err)
	}
	return nil
}

// ForUser returns an OverrideSource view of one user's customizations for
// prompt resolution.
func (s *Store) ForUser(userID string) prompts.OverrideSource {
	return &userView{store: s, userID: userID}
}

type userView struct {
	store  *Store
	userID string
}

func (v *userView) ModelPrompt(model, stage string) (string, bool) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	custom := v.store.load(v.userID)
	if m, ok := custom.Models[model]; ok {
		t, ok := m[stage]
		return t, ok
	}
	return "", false
}

func (v *userView) StagePrompt(stage string) (string, bool) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	custom := v.store.load(v.userID)
	t, ok := custom.Defaults[stage]
	return t, ok
}
