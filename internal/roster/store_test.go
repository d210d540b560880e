package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardroom-ai/boardroom/internal/models"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestStoreDefaults(t *testing.T) {
	s := NewStore(t.TempDir())

	members, err := s.List("alice")
	require.NoError(t, err)
	require.Len(t, members, 4)

	titles := make([]string, 0, 4)
	for _, m := range members {
		titles = append(titles, m.Title)
		assert.True(t, m.Active)
		assert.NotEmpty(t, m.ID)
		assert.NotEmpty(t, m.Model)
		_, ok := m.StagePrompt(models.StageOne)
		assert.True(t, ok)
	}
	assert.Contains(t, titles, "Ethics & Values Advisor")
	assert.Contains(t, titles, "Financial & Business Advisor")

	// Defaults are not persisted until a mutation
	_, err = os.Stat(filepath.Join(s.dataDir, "users", "alice", "members.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestStoreCRUD(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		s := NewStore(t.TempDir())

		created, err := s.Create("alice", "Devil's Advocate", "Challenges assumptions.", "openai/gpt-5.1", nil, true)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		// Persisting the first mutation persists the defaults too
		members, err := s.List("alice")
		require.NoError(t, err)
		require.Len(t, members, 5)

		got, err := s.Get("alice", created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Devil's Advocate", got.Title)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := NewStore(t.TempDir())
		_, err := s.Get("alice", "nope")
		require.ErrorIs(t, err, ErrMemberNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		s := NewStore(t.TempDir())
		created, err := s.Create("alice", "Advisor", "role", "model-a", nil, true)
		require.NoError(t, err)

		updated, err := s.Update("alice", created.ID, MemberUpdate{
			Title:  strPtr("Senior Advisor"),
			Active: boolPtr(false),
		})
		require.NoError(t, err)
		assert.Equal(t, "Senior Advisor", updated.Title)
		assert.False(t, updated.Active)
		// untouched fields survive
		assert.Equal(t, "model-a", updated.Model)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := NewStore(t.TempDir())
		_, err := s.Update("alice", "nope", MemberUpdate{Title: strPtr("x")})
		require.ErrorIs(t, err, ErrMemberNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		s := NewStore(t.TempDir())
		created, err := s.Create("alice", "Advisor", "role", "model-a", nil, true)
		require.NoError(t, err)

		require.NoError(t, s.Delete("alice", created.ID))
		_, err = s.Get("alice", created.ID)
		require.ErrorIs(t, err, ErrMemberNotFound)

		require.ErrorIs(t, s.Delete("alice", created.ID), ErrMemberNotFound)
	})

	t.Run("UserScoping", func(t *testing.T) {
		s := NewStore(t.TempDir())
		created, err := s.Create("alice", "Advisor", "role", "model-a", nil, true)
		require.NoError(t, err)

		_, err = s.Get("bob", created.ID)
		require.ErrorIs(t, err, ErrMemberNotFound)
	})
}

func TestChairman(t *testing.T) {
	t.Run("DefaultIsNil", func(t *testing.T) {
		s := NewStore(t.TempDir())
		chairman, err := s.Chairman("alice")
		require.NoError(t, err)
		assert.Nil(t, chairman)
	})

	t.Run("SetAndClear", func(t *testing.T) {
		s := NewStore(t.TempDir())
		created, err := s.Create("alice", "Advisor", "role", "model-a", nil, true)
		require.NoError(t, err)

		require.NoError(t, s.SetChairman("alice", created.ID))
		chairman, err := s.Chairman("alice")
		require.NoError(t, err)
		require.NotNil(t, chairman)
		assert.Equal(t, created.ID, chairman.ID)

		require.NoError(t, s.SetChairman("alice", ""))
		chairman, err = s.Chairman("alice")
		require.NoError(t, err)
		assert.Nil(t, chairman)
	})

	t.Run("SetUnknownMember", func(t *testing.T) {
		s := NewStore(t.TempDir())
		require.ErrorIs(t, s.SetChairman("alice", "nope"), ErrMemberNotFound)
	})

	t.Run("DeleteClearsDesignation", func(t *testing.T) {
		s := NewStore(t.TempDir())
		created, err := s.Create("alice", "Advisor", "role", "model-a", nil, true)
		require.NoError(t, err)
		require.NoError(t, s.SetChairman("alice", created.ID))

		require.NoError(t, s.Delete("alice", created.ID))
		chairman, err := s.Chairman("alice")
		require.NoError(t, err)
		assert.Nil(t, chairman)
	})
}

func TestInitialize(t *testing.T) {
	s := NewStore(t.TempDir())

	members, err := s.Initialize("alice")
	require.NoError(t, err)
	require.Len(t, members, 4)

	// Initializing again leaves an existing roster untouched.
	created, err := s.Create("alice", "Extra", "role", "model-a", nil, true)
	require.NoError(t, err)

	again, err := s.Initialize("alice")
	require.NoError(t, err)
	require.Len(t, again, 5)

	_, err = s.Get("alice", created.ID)
	require.NoError(t, err)
}

func TestSnapshot(t *testing.T) {
	t.Run("DefaultChairman", func(t *testing.T) {
		s := NewStore(t.TempDir())

		roster, err := s.Snapshot("alice", "model-chair")
		require.NoError(t, err)
		require.Len(t, roster.Members, 4)
		require.NotNil(t, roster.Chairman)
		assert.Equal(t, "model-chair", roster.Chairman.Model)
	})

	t.Run("DesignatedChairman", func(t *testing.T) {
		s := NewStore(t.TempDir())
		created, err := s.Create("alice", "Advisor", "role", "model-a", nil, true)
		require.NoError(t, err)
		require.NoError(t, s.SetChairman("alice", created.ID))

		roster, err := s.Snapshot("alice", "model-chair")
		require.NoError(t, err)
		require.NotNil(t, roster.Chairman)
		assert.Equal(t, created.ID, roster.Chairman.ID)
		assert.Equal(t, "model-a", roster.Chairman.Model)
	})
}
