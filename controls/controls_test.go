package controls

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achilleasa/raylive/input"
)

type eventSink struct {
	sync.Mutex
	events []input.Event
}

func (s *eventSink) push(ev input.Event) {
	s.Lock()
	defer s.Unlock()
	s.events = append(s.events, ev)
}

func (s *eventSink) snapshot() []input.Event {
	s.Lock()
	defer s.Unlock()
	return append([]input.Event(nil), s.events...)
}

func TestDiff(t *testing.T) {
	prev, err := Parse([]byte("focal_length: 1\nwidth: 800\n"))
	require.NoError(t, err)
	next, err := Parse([]byte("focal_length: 1.5\nwidth: 800\nanti_alias: 4\n"))
	require.NoError(t, err)

	exp := []input.Event{
		input.ControlChange{Control: input.FocalLength, Value: 1.5},
		input.ControlChange{Control: input.AntiAlias, Value: 4},
	}
	assert.Equal(t, exp, Diff(prev, next))
	assert.Empty(t, Diff(next, next))

	// Removing a control does not emit anything
	assert.Empty(t, Diff(next, Values{}))
}

func TestParseErrors(t *testing.T) {
	v, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Nil(t, v.Width)

	_, err = Parse([]byte("zoom: 3\n"))
	assert.ErrorContains(t, err, "field zoom not found")
}

func TestParseRejectsInvalidValues(t *testing.T) {
	type spec struct {
		doc    string
		expErr string
	}
	specs := []spec{
		{"focal_length: .nan\n", "controls: focal_length NaN must be a positive number"},
		{"focal_length: .inf\n", "controls: focal_length +Inf must be a positive number"},
		{"focal_length: -1\n", "controls: focal_length -1 must be a positive number"},
		{"width: 0\n", "controls: width 0 must be positive"},
		{"anti_alias: -2\n", "controls: anti_alias -2 must be between 0 and 256"},
		{"anti_alias: 4294967296\n", "controls: anti_alias 4294967296 must be between 0 and 256"},
	}

	for index, s := range specs {
		v, err := Parse([]byte(s.doc))
		assert.EqualErrorf(t, err, s.expErr, "[spec %d]", index)
		assert.Emptyf(t, Diff(Values{}, v), "[spec %d]", index)
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "controls.yaml")
	sink := &eventSink{}
	w, err := NewWatcher(path, sink.push)
	require.NoError(t, err)

	// A missing file is not an error
	require.NoError(t, w.Reload())
	assert.Empty(t, sink.snapshot())

	require.NoError(t, os.WriteFile(path, []byte("width: 960\n"), 0644))
	require.NoError(t, w.Reload())
	require.NoError(t, w.Reload())
	assert.Equal(t, []input.Event{input.ControlChange{Control: input.Width, Value: 960}}, sink.snapshot())

	require.NoError(t, os.WriteFile(path, []byte("width: [\n"), 0644))
	assert.Error(t, w.Reload())
}

func TestWatcherPicksUpEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "controls.yaml")
	require.NoError(t, os.WriteFile(path, []byte("focal_length: 1\n"), 0644))

	sink := &eventSink{}
	w, err := NewWatcher(path, sink.push)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("focal_length: 2\n"), 0644))
	require.Eventually(t, func() bool {
		events := sink.snapshot()
		return len(events) >= 2 && events[len(events)-1] == input.ControlChange{Control: input.FocalLength, Value: 2}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
