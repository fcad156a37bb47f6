package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONUsesSlog(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "json")
	require.IsType(t, &SlogLogger{}, log)

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown", "k", "v")

	out := strings.TrimSpace(buf.String())
	require.NotContains(t, out, "hidden")
	m := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "WARN", m["level"])
	assert.Equal(t, "shown", m["msg"])
	assert.Equal(t, "v", m["k"])
}

func TestNew_ConsoleUsesZerolog(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "bogus", "console")
	require.IsType(t, &ZerologLogger{}, log)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "plan saved")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "plan saved")
}
