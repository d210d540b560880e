package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/boardroom-ai/boardroom/internal/config"
)

func TestInitCommand_CreatesWorkspace(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "my-board")

	var buf bytes.Buffer
	cmd := newInitCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{target})
	require.NoError(t, cmd.Execute())

	cfgPath := filepath.Join(target, config.ConfigFileName)
	assert.FileExists(t, cfgPath)
	assert.DirExists(t, filepath.Join(target, "data"))
	assert.FileExists(t, filepath.Join(target, "data", "users", "local", "members.json"))

	// The generated config carries the documented defaults.
	raw, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(raw, &cfg))
	assert.Equal(t, config.DefaultChairmanModel, cfg.Council.ChairmanModel)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultCouncilModels, cfg.Council.Models)

	output := buf.String()
	assert.Contains(t, output, "Initialized boardroom workspace")
	assert.Contains(t, output, cfgPath)
	assert.Contains(t, output, "board of 4 members")
	assert.Contains(t, output, "OPENROUTER_API_KEY")
}

func TestInitCommand_ExistingConfigLeftUnchanged(t *testing.T) {
	target := t.TempDir()
	cfgPath := filepath.Join(target, config.ConfigFileName)
	custom := []byte("server:\n  port: 9999\n")
	require.NoError(t, os.WriteFile(cfgPath, custom, 0o644))

	var buf bytes.Buffer
	cmd := newInitCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{target})
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, custom, raw)
	assert.Contains(t, buf.String(), "left unchanged")
}

func TestInitCommand_PreservesExistingRoster(t *testing.T) {
	target := t.TempDir()
	membersPath := filepath.Join(target, "data", "users", "local", "members.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(membersPath), 0o755))
	custom := []byte(`{"agents":[],"chairman":""}`)
	require.NoError(t, os.WriteFile(membersPath, custom, 0o644))

	cmd := newInitCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{target})
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(membersPath)
	require.NoError(t, err)
	assert.Equal(t, custom, raw)
}
