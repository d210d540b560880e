package spinner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards a bytes.Buffer against the spinner's render goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerRendersAndClears(t *testing.T) {
	var buf syncBuffer
	s := Start(&buf, "thinking")
	time.Sleep(200 * time.Millisecond)
	s.Update("still thinking")
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "thinking")
	assert.Contains(t, out, "still thinking")
	// The final write blanks the widest message rendered so far.
	assert.True(t, strings.HasSuffix(out, strings.Repeat(" ", len("still thinking")+2)+"\r"))
}

func TestSpinnerStopTwice(t *testing.T) {
	var buf syncBuffer
	s := Start(&buf, "working")
	s.Stop()
	s.Stop()
}
