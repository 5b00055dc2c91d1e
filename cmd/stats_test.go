package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/achilleasa/raylive/engine"
	"github.com/achilleasa/raylive/renderer"
)

func TestWriteFrameStats(t *testing.T) {
	stats := renderer.FrameStats{
		Tracers: []engine.TracerStat{
			{Id: "cpu-0", BlockH: 300, FramePercent: 66.7, RenderTime: 4 * time.Millisecond},
			{Id: "cpu-1", BlockH: 150, FramePercent: 33.3, RenderTime: 3 * time.Millisecond},
		},
		RenderTime: 5 * time.Millisecond,
	}

	var buf bytes.Buffer
	writeFrameStats(&buf, stats)
	out := buf.String()

	for _, exp := range []string{"Tracer", "cpu-0", "cpu-1", "300", "66.7 %", "TOTAL", "5ms"} {
		assert.Contains(t, out, exp)
	}
}

func TestWriteSessionStats(t *testing.T) {
	stats := renderer.SessionStats{
		Issued:          12,
		Presented:       10,
		Discarded:       2,
		MinRenderTime:   2 * time.Millisecond,
		MaxRenderTime:   8 * time.Millisecond,
		TotalRenderTime: 40 * time.Millisecond,
	}

	var buf bytes.Buffer
	writeSessionStats(&buf, stats, 2*time.Second)
	out := buf.String()

	for _, exp := range []string{"Issued", "12", "10", "2ms", "4ms", "8ms", "2s", "5.0"} {
		assert.Contains(t, out, exp)
	}
}

func TestIgnoreCancel(t *testing.T) {
	assert.NoError(t, ignoreCancel(nil))
	assert.NoError(t, ignoreCancel(context.Canceled))
	assert.NoError(t, ignoreCancel(fmt.Errorf("run: %w", context.Canceled)))

	err := errors.New("boom")
	assert.Equal(t, err, ignoreCancel(err))
}
