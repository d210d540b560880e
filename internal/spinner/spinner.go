// Package spinner renders a single-line animated status indicator for
// long-running terminal operations.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status message on one terminal line. The message can
// be swapped while the animation runs, so one spinner can narrate a
// multi-phase operation.
type Spinner struct {
	w        io.Writer
	mu       sync.Mutex
	message  string
	maxWidth int
	done     chan struct{}
	cleared  chan struct{}
	stopOnce sync.Once
}

// Start displays an animated spinner with the given message on w.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:        w,
		message:  message,
		maxWidth: len(message),
		done:     make(chan struct{}),
		cleared:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Update replaces the displayed message without restarting the animation.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	if len(message) > s.maxWidth {
		s.maxWidth = len(message)
	}
	s.mu.Unlock()
}

// Stop halts the animation and clears the line. Safe to call twice.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.cleared
}

func (s *Spinner) run() {
	i := 0
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			width := s.maxWidth
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width+2)) //nolint:errcheck
			close(s.cleared)
			return
		case <-time.After(80 * time.Millisecond):
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s %s", frames[i%len(frames)], msg) //nolint:errcheck
			i++
		}
	}
}
