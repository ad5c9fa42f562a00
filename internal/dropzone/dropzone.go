// Package dropzone watches a folder and hands over files dropped into it once
// they stop changing.
package dropzone

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/hoangphuccoder123/tutorbond/internal/utils"
)

const DefaultSettle = 500 * time.Millisecond

// Drop is a file that appeared in the watched folder.
type Drop struct {
	Path string
	Name string
	Data []byte
}

type Options struct {
	// Extensions accepted by the watcher, lowercase with the dot. Defaults to ".docx".
	Extensions []string
	// Settle is how long a file must stay quiet before it is read.
	Settle time.Duration
	Logger *zap.Logger
}

type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions []string
	settle     time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

func New(opts Options) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = []string{".docx"}
	}
	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		watcher:    w,
		extensions: extensions,
		settle:     settle,
		logger:     logger,
		pending:    make(map[string]time.Time),
	}, nil
}

// Watch starts monitoring dir. The returned channel is closed when ctx is done
// or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Drop, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	drops := make(chan Drop, 16)
	var wg sync.WaitGroup

	go func() {
		defer func() {
			wg.Wait()
			close(drops)
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if !w.accepts(event.Name) {
					w.logger.Debug("ignoring dropped file", zap.String("path", event.Name))
					continue
				}
				if w.touch(event.Name) {
					wg.Add(1)
					go func(path string) {
						defer wg.Done()
						w.settleAndSend(ctx, path, drops)
					}(event.Name)
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("drop folder watcher error", zap.Error(err))
			}
		}
	}()

	return drops, nil
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// touch records activity on path and reports whether a new settle wait must start.
func (w *Watcher) touch(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, waiting := w.pending[path]
	w.pending[path] = time.Now()
	return !waiting
}

// remainingQuiet returns how long path must still stay quiet before it settles,
// or zero once it has.
func (w *Watcher) remainingQuiet(path string) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	remaining := w.settle - time.Since(w.pending[path])
	if remaining <= 0 {
		delete(w.pending, path)
		return 0
	}
	return remaining
}

func (w *Watcher) settleAndSend(ctx context.Context, path string, drops chan<- Drop) {
	wait := w.settle
	for wait > 0 {
		if err := utils.WaitFor(ctx, wait); err != nil {
			return
		}
		wait = w.remainingQuiet(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("failed to read dropped file", zap.String("path", path), zap.Error(err))
		return
	}

	select {
	case drops <- Drop{Path: path, Name: filepath.Base(path), Data: data}:
	case <-ctx.Done():
	}
}

func (w *Watcher) accepts(path string) bool {
	name := filepath.Base(path)
	// Office lock files and editor temp files.
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
