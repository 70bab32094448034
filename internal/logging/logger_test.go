package logging_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/systmms/remoteconfig/internal/logging"
)

func TestSecretNeverPrints(t *testing.T) {
	t.Parallel()

	s := logging.Secret("hunter2")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", s))
}

func TestRedact(t *testing.T) {
	t.Parallel()

	out := logging.Redact("token=abcd1234 user=alice", []string{"abcd1234"})
	assert.Equal(t, "token=[REDACTED] user=alice", out)

	// Trivial values are left alone to avoid shredding ordinary text.
	out = logging.Redact("a=1 b=ok", []string{"1", "ok", ""})
	assert.Equal(t, "a=1 b=ok", out)
}

func TestDebugSuppressedWithoutVerbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, false)
	logger.Debug("should not appear")
	assert.Empty(t, buf.String())

	logger.Info("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestVerboseDebugOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, true)
	logger.Debug("fetching %d secrets", 3)
	assert.Contains(t, buf.String(), "[DEBUG]")
	assert.Contains(t, buf.String(), "fetching 3 secrets")
}

func TestWarnAndError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, false)
	logger.Warn("watch out")
	logger.Error("it broke")
	assert.Contains(t, buf.String(), "watch out")
	assert.Contains(t, buf.String(), "it broke")
}
