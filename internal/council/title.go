package council

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/boardroom-ai/boardroom/internal/gateway"
)

// DefaultTitle is used when title generation fails or returns nothing.
const DefaultTitle = "New Conversation"

const (
	titleTimeout = 30 * time.Second
	titleMaxLen  = 50

	titlePrompt = `Generate a very short title (3-6 words) that summarizes the topic of this query. Respond with ONLY the title, no quotes and no trailing punctuation.

Query: `
)

// Titler generates conversation titles with a fast model.
type Titler struct {
	gw     gateway.Gateway
	model  string
	logger *slog.Logger
}

// NewTitler creates a Titler. logger may be nil.
func NewTitler(gw gateway.Gateway, model string, logger *slog.Logger) *Titler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Titler{gw: gw, model: model, logger: logger}
}

// Generate produces a short title from the first user query. It never
// returns an error: a slow or broken title model must not block a
// deliberation, so any failure falls back to DefaultTitle. The call is
// bounded to 30 seconds regardless of the gateway's own timeout.
func (t *Titler) Generate(ctx context.Context, query string) string {
	ctx, cancel := context.WithTimeout(ctx, titleTimeout)
	defer cancel()

	reply, err := t.gw.Query(ctx, t.model, titlePrompt+query)
	if err != nil {
		t.logger.Warn("title generation failed", "model", t.model, "error", err)
		return DefaultTitle
	}

	title := sanitizeTitle(reply.Content)
	if title == "" {
		return DefaultTitle
	}
	return title
}

// sanitizeTitle trims whitespace and surrounding quotes, collapses the
// text to a single line, and truncates anything over 50 characters to 47
// plus an ellipsis.
func sanitizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	title = strings.Trim(title, `"'`)
	title = strings.TrimSpace(title)

	if len(title) > titleMaxLen {
		title = title[:titleMaxLen-3] + "..."
	}
	return title
}
