// Package watch converts exports as they appear in a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/ctm/moves-still-count/internal/convert"
	"github.com/ctm/moves-still-count/log"
)

// FileConverter is implemented by *convert.Converter.
type FileConverter interface {
	ConvertFile(path string) (convert.Result, error)
}

const (
	defaultSettleTime = 2 * time.Second
	minTick           = 10 * time.Millisecond
)

var defaultExtensions = []string{".sml", ".xml"}

type options struct {
	extensions []string
	settleTime time.Duration
	logger     *log.Logger
}

// Option configures a Watcher.
type Option func(o *options)

// WithExtensions directs Watcher to only convert files with these extensions.
func WithExtensions(exts ...string) Option {
	return func(o *options) {
		o.extensions = lo.Map(exts, func(ext string, _ int) string {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			return ext
		})
	}
}

// WithSettleTime sets how long a file must stay unchanged before it is converted.
func WithSettleTime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.settleTime = d
		}
	}
}

// WithLogger directs Watcher to log to l instead of log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Watcher converts files created or written in a directory once they
// settled. Conversion failures are logged, they never stop the Watcher.
type Watcher struct {
	options options
	dir     string
	conv    FileConverter
	pending map[string]time.Time // path -> last event
	started chan struct{}
	once    sync.Once
}

// New creates a Watcher handing the settled files in dir to conv.
// Files are matched against .sml and .xml and settle after 2s unless
// options say otherwise.
func New(dir string, conv FileConverter, opts ...Option) *Watcher {
	o := options{
		extensions: defaultExtensions,
		settleTime: defaultSettleTime,
	}
	for i := range opts {
		opts[i](&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return &Watcher{
		options: o,
		dir:     dir,
		conv:    conv,
		pending: make(map[string]time.Time),
		started: make(chan struct{}),
	}
}

// Started is closed once the directory is being watched by the first Run.
func (w *Watcher) Started() <-chan struct{} { return w.started }

// Run watches until ctx is done. It may be called again after it returned,
// files still pending are picked up by the next call.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fw.Close()

	if err = fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.options.logger.Info("watching", log.String("dir", w.dir),
		log.Any("extensions", w.options.extensions),
		log.Duration("settle", w.options.settleTime))
	w.once.Do(func() { close(w.started) })

	ticker := time.NewTicker(max(w.options.settleTime/4, minTick))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.options.logger.Info("context done, stopping watch")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.options.logger.Error("watcher error", log.ErrorField(err))
		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !lo.Contains(w.options.extensions, strings.ToLower(filepath.Ext(event.Name))) {
		return
	}
	w.options.logger.Debug("change detected",
		log.String("file", event.Name), log.String("op", event.Op.String()))
	w.pending[event.Name] = time.Now()
}

// flush converts every pending file that had no event for the settle time.
func (w *Watcher) flush(now time.Time) {
	for path, last := range w.pending {
		if now.Sub(last) < w.options.settleTime {
			continue
		}
		delete(w.pending, path)
		if _, err := w.conv.ConvertFile(path); err != nil {
			w.options.logger.Error("conversion failed",
				log.String("file", path), log.ErrorField(err))
		}
	}
}
