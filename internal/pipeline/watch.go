package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the bursts of events editors produce on save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher regenerates the header whenever one of the inputs changes.
type Watcher struct {
	pipeline *Pipeline
	inputs   []string
	output   string
	log      *zap.SugaredLogger

	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer

	runMu   sync.Mutex
	stopped bool

	// OnRun is called after every regeneration attempt.
	OnRun func(*Result, error)
}

// NewWatcher watches the directories holding inputs. Directories are watched
// rather than files so that editors replacing a file on save are still seen.
func (p *Pipeline) NewWatcher(inputs []string, output string) (*Watcher, error) {
	files, err := Discover(inputs)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	dirs := map[string]bool{}
	for _, f := range files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "watching %s", dir)
		}
	}
	return &Watcher{
		pipeline: p,
		inputs:   inputs,
		output:   output,
		log:      p.log,
		watcher:  fw,
		debounce: DefaultDebounce,
	}, nil
}

// SetDebounce changes the quiet period before a regeneration.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Run generates once, then regenerates on changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	w.regenerate()

	abs, _ := filepath.Abs(w.output)
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			// Wait for a regeneration already under way.
			w.runMu.Lock()
			w.stopped = true
			w.runMu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name == abs {
				continue
			}
			if !manifestExts[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			w.log.Debugw("Input changed", "file", event.Name, "op", event.Op.String())
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.regenerate)
}

func (w *Watcher) regenerate() {
	// Runs never overlap; each one starts from a fresh aggregator.
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if w.stopped {
		return
	}

	res, err := w.pipeline.Run(w.inputs, w.output)
	if err != nil {
		w.log.Errorw("Regeneration failed", "error", err)
	}
	if w.OnRun != nil {
		w.OnRun(res, err)
	}
}
