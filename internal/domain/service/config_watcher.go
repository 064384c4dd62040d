package service

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ChatTuning holds the chat knobs that may change while the server is
// running. Everything else in the config requires a restart.
type ChatTuning struct {
	HistoryWindow int
	Language      string
}

// TuningSource yields the current chat tuning. The orchestrator reads
// it once per request so edits apply to the next turn.
type TuningSource interface {
	Tuning() ChatTuning
}

// StaticTuning is a TuningSource that never changes (tests, or when
// no config file exists to watch).
type StaticTuning ChatTuning

func (s StaticTuning) Tuning() ChatTuning { return ChatTuning(s) }

// TuningWatcher hot-reloads ChatTuning when the config file changes.
// Safe for concurrent reads from request handlers.
type TuningWatcher struct {
	path   string
	load   func(path string) (ChatTuning, error)
	mu     sync.RWMutex
	tuning ChatTuning
	logger *zap.Logger
}

// NewTuningWatcher creates a watcher over the given config file.
// initial is used until the first successful reload; load parses the
// file into a ChatTuning.
func NewTuningWatcher(path string, initial ChatTuning, load func(path string) (ChatTuning, error), logger *zap.Logger) *TuningWatcher {
	return &TuningWatcher{
		path:   path,
		load:   load,
		tuning: initial,
		logger: logger.With(zap.String("component", "tuning-watcher")),
	}
}

var _ TuningSource = (*TuningWatcher)(nil)

// Tuning returns the current tuning (thread-safe).
func (w *TuningWatcher) Tuning() ChatTuning {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tuning
}

// Run watches the config file until ctx is cancelled. Editors replace
// files on save, so both Write and Create events trigger a reload; a
// short debounce coalesces the burst a single save produces.
func (w *TuningWatcher) Run(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("Tuning watcher unavailable", zap.Error(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(w.path); err != nil {
		w.logger.Warn("Cannot watch config file",
			zap.String("path", w.path),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("Watching config for chat tuning changes", zap.String("path", w.path))

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, w.reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Tuning watcher error", zap.Error(err))
		}
	}
}

func (w *TuningWatcher) reload() {
	tuning, err := w.load(w.path)
	if err != nil {
		w.logger.Warn("Tuning reload failed, keeping previous values", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.tuning = tuning
	w.mu.Unlock()

	w.logger.Info("Chat tuning reloaded",
		zap.Int("history_window", tuning.HistoryWindow),
		zap.String("language", tuning.Language),
	)
}
