package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	type spec struct {
		in  string
		exp Level
	}
	specs := []spec{
		{"debug", Debug},
		{"INFO", Info},
		{"", Notice},
		{" warn ", Warning},
		{"error", Error},
	}

	for index, s := range specs {
		got, err := ParseLevel(s.in)
		require.NoErrorf(t, err, "[spec %d]", index)
		assert.Equalf(t, s.exp, got, "[spec %d]", index)
	}

	_, err := ParseLevel("chatty")
	assert.EqualError(t, err, `log: unknown level "chatty"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)

	logger := New("test")
	SetLevel(Warning)
	logger.Notice("hidden")
	logger.Warning("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "[test]")
}
