// Package testutil holds shared helpers for the test suites.
package testutil

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/remoteconfig/internal/logging"
)

// BufferLogger captures log output for validation in tests, primarily
// to verify that secret values never reach the log stream.
type BufferLogger struct {
	*logging.Logger
	buf *syncBuffer
}

// NewBufferLogger creates a logger backed by an in-memory buffer.
// Verbose mode is enabled so Debug output is captured too.
func NewBufferLogger(t *testing.T) *BufferLogger {
	t.Helper()

	buf := &syncBuffer{}
	return &BufferLogger{
		Logger: logging.NewWithWriter(buf, true),
		buf:    buf,
	}
}

// Output returns everything logged so far.
func (l *BufferLogger) Output() string {
	return l.buf.String()
}

// AssertContains fails the test when the log output lacks want.
func (l *BufferLogger) AssertContains(t *testing.T, want string) {
	t.Helper()
	assert.True(t, strings.Contains(l.Output(), want),
		"log output should contain %q, got:\n%s", want, l.Output())
}

// AssertNotContains fails the test when the log output includes the
// given string, typically an unmasked secret.
func (l *BufferLogger) AssertNotContains(t *testing.T, unwanted string) {
	t.Helper()
	assert.False(t, strings.Contains(l.Output(), unwanted),
		"log output should not contain %q, got:\n%s", unwanted, l.Output())
}

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
