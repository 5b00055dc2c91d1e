package renderer

import (
	"time"

	"github.com/achilleasa/raylive/engine"
)

type FrameStats struct {
	// Individual tracer stats.
	Tracers []engine.TracerStat

	// Total render time for entire frame.
	RenderTime time.Duration
}

// SessionStats summarize the frames handled by a scheduler.
type SessionStats struct {
	// Frame requests sent to the bridge.
	Issued int

	// Frames painted on the surface.
	Presented int

	// Stale frames that arrived after a resize and were dropped.
	Discarded int

	MinRenderTime   time.Duration
	MaxRenderTime   time.Duration
	TotalRenderTime time.Duration
}

// Get the average render time of presented frames.
func (s SessionStats) AvgRenderTime() time.Duration {
	if s.Presented == 0 {
		return 0
	}
	return s.TotalRenderTime / time.Duration(s.Presented)
}

func (s *SessionStats) recordPresented(elapsed time.Duration) {
	if s.Presented == 0 || elapsed < s.MinRenderTime {
		s.MinRenderTime = elapsed
	}
	if elapsed > s.MaxRenderTime {
		s.MaxRenderTime = elapsed
	}
	s.TotalRenderTime += elapsed
	s.Presented++
}
