package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boardroom-ai/boardroom/internal/council"
	"github.com/boardroom-ai/boardroom/internal/models"
)

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		wantDeliberation bool
	}{
		{
			name:             "DeliberationError",
			err:              &council.DeliberationError{Code: models.ErrCodeAllMembersFailed, Message: "all board members failed"},
			wantDeliberation: true,
		},
		{
			name:             "regular error",
			err:              errors.New("config error"),
			wantDeliberation: false,
		},
		{
			name:             "wrapped DeliberationError",
			err:              fmt.Errorf("deliberation: %w", &council.DeliberationError{Code: models.ErrCodeChairmanFailed, Message: "chairman failed"}),
			wantDeliberation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var delibErr *council.DeliberationError
			assert.Equal(t, tt.wantDeliberation, errors.As(tt.err, &delibErr))
		})
	}
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "ask")
	assert.Contains(t, names, "init")
	assert.True(t, cmd.SilenceUsage)
}
