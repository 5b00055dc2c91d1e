package renderer

import "time"

const (
	// The default tick rate.
	DefaultFPS = 60

	// The highest supported tick rate.
	MaxFPS = 1000

	// The default quiet window before a width change is applied.
	DefaultResizeDebounce = 200 * time.Millisecond

	// The default snapshot file name pattern.
	DefaultSnapshotPattern = "snapshot-%03d.png"
)

type Options struct {
	// Tick rate in frames per second.
	FPS int

	// Quiet window before a width change is applied.
	ResizeDebounce time.Duration

	// Stop after presenting this many frames; 0 runs until quit.
	MaxFrames int

	// Printf pattern for snapshot file names. It receives the snapshot
	// counter; the extension selects the image format.
	SnapshotPattern string

	// An optional native event pump driven from the tick loop.
	Poller Poller
}

// A Poller pumps a native event queue. Windowing toolkits that require
// events to be processed on the thread that owns the window implement this
// so the tick loop can drive them.
type Poller interface {
	PollEvents()
	ShouldClose() bool
}

func (o Options) withDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.FPS > MaxFPS {
		o.FPS = MaxFPS
	}
	if o.ResizeDebounce <= 0 {
		o.ResizeDebounce = DefaultResizeDebounce
	}
	if o.SnapshotPattern == "" {
		o.SnapshotPattern = DefaultSnapshotPattern
	}
	return o
}
