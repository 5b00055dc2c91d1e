package controls

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/achilleasa/raylive/input"
	"github.com/achilleasa/raylive/log"
	"github.com/achilleasa/raylive/scene"
)

var logger = log.New("controls")

// Values holds the numeric controls read from a controls file. Controls
// missing from the file are nil and never produce change events.
type Values struct {
	FocalLength *float64 `yaml:"focal_length"`
	Width       *int     `yaml:"width"`
	AntiAlias   *int     `yaml:"anti_alias"`
}

// Parse a controls document.
func Parse(data []byte) (Values, error) {
	var v Values
	if len(bytes.TrimSpace(data)) == 0 {
		return v, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("controls: parse: %w", err)
	}
	if err := v.validate(); err != nil {
		return Values{}, err
	}
	return v, nil
}

func (v Values) validate() error {
	if v.FocalLength != nil && !scene.PositiveFinite(*v.FocalLength) {
		return fmt.Errorf("controls: focal_length %v must be a positive number", *v.FocalLength)
	}
	if v.Width != nil && *v.Width <= 0 {
		return fmt.Errorf("controls: width %d must be positive", *v.Width)
	}
	if v.AntiAlias != nil && (*v.AntiAlias < 0 || *v.AntiAlias > scene.MaxAntiAlias) {
		return fmt.Errorf("controls: anti_alias %d must be between 0 and %d", *v.AntiAlias, scene.MaxAntiAlias)
	}
	return nil
}

// Diff returns the change events needed to go from prev to next. Events are
// ordered focal length, width, anti-alias.
func Diff(prev, next Values) []input.Event {
	var out []input.Event
	if next.FocalLength != nil && (prev.FocalLength == nil || *prev.FocalLength != *next.FocalLength) {
		out = append(out, input.ControlChange{Control: input.FocalLength, Value: *next.FocalLength})
	}
	if next.Width != nil && (prev.Width == nil || *prev.Width != *next.Width) {
		out = append(out, input.ControlChange{Control: input.Width, Value: float64(*next.Width)})
	}
	if next.AntiAlias != nil && (prev.AntiAlias == nil || *prev.AntiAlias != *next.AntiAlias) {
		out = append(out, input.ControlChange{Control: input.AntiAlias, Value: float64(*next.AntiAlias)})
	}
	return out
}

// A Watcher turns edits of a controls file into ControlChange events. The
// file acts as the numeric input widgets of a headless session: saving a new
// width is equivalent to typing it into a width field.
type Watcher struct {
	path string
	sink func(input.Event)
	last Values
}

// Create a watcher for a controls file. Every change event is passed to sink.
func NewWatcher(path string, sink func(input.Event)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Watcher{path: abs, sink: sink}, nil
}

// Get the watched file path.
func (w *Watcher) Path() string {
	return w.path
}

// Read the file and emit events for values that differ from the last read.
// A missing file is treated as empty.
func (w *Watcher) Reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("controls: read %s: %w", w.path, err)
	}

	next, err := Parse(data)
	if err != nil {
		return err
	}
	for _, ev := range Diff(w.last, next) {
		logger.Debugf("control change: %+v", ev)
		w.sink(ev)
	}
	w.last = next
	return nil
}

// Apply the current file contents and then watch for edits until the
// context is cancelled. The parent directory is watched so that editors
// that replace the file on save are handled too.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("controls: could not create watcher: %w", err)
	}
	defer fsw.Close()

	if err = fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("controls: could not watch %s: %w", filepath.Dir(w.path), err)
	}
	if err = w.Reload(); err != nil {
		logger.Warning(err.Error())
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Invalid edits are reported and skipped; the next save may fix them.
			if err = w.Reload(); err != nil {
				logger.Warning(err.Error())
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warningf("watch error: %v", err)
		}
	}
}
