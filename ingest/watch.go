package ingest

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/smallnest/ontollm/log"
	"github.com/smallnest/ontollm/ontology"
)

// DefaultDebounce collapses bursts of writes into one reload.
const DefaultDebounce = 300 * time.Millisecond

type watchConfig struct {
	debounce time.Duration
	onReload func(doc *ontology.Document, err error)
}

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) { c.debounce = d }
}

// WithReloadHook is called after every reload attempt.
func WithReloadHook(fn func(doc *ontology.Document, err error)) WatchOption {
	return func(c *watchConfig) { c.onReload = fn }
}

// Watch replaces the contents of store with the document at path every
// time the file is written or created. It blocks until ctx is done. A
// document that fails to parse leaves the store untouched.
func Watch(ctx context.Context, store ontology.Store, path string, logger log.Logger, opts ...WatchOption) error {
	cfg := watchConfig{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&cfg)
	}
	if logger == nil {
		logger = log.GetDefaultLogger()
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", path)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create file watcher")
	}
	defer watcher.Close()

	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(target))
	}
	logger.Info("watching ontology %s", target)

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	reload := func() {
		defer wg.Done()
		doc, err := ParseFile(target)
		if err == nil {
			if err = Reset(ctx, store); err == nil {
				err = store.Ingest(ctx, doc)
			}
		}
		if err != nil {
			logger.Error("ontology reload failed: %v", err)
		} else {
			logger.Info("ontology reloaded from %s (instances=%d relations=%d)", target, len(doc.Instances), len(doc.Relations))
		}
		if cfg.onReload != nil {
			cfg.onReload(doc, err)
		}
	}
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		wg.Add(1)
		timer = time.AfterFunc(cfg.debounce, reload)
	}
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("ontology watcher event %s", ev)
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("ontology watcher error: %v", err)
		}
	}
}
