package config

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bookworks/rebook/logging"
)

const namedLogger = "cfgwatcher"

// Watcher is looking for updates in the configuration file.
type Watcher struct {
	log  *logging.Logger
	cfg  Config
	path string

	cfgUpdateListeners []func(Config)
	mu                 sync.Mutex
}

// NewFromFile instantiate a new watcher on the given configuration file.
// Listener functions run on the watcher goroutine; they must only touch
// state that is safe to update concurrently, such as atomic log levels.
func NewFromFile(ctx context.Context, log *logging.Logger, path string) (*Watcher, error) {
	watcherlog := log.Named(namedLogger)
	// notify configuration changes at any log level
	watcherlog.SetLevel(logging.DebugLevel)
	w := &Watcher{
		log:                watcherlog,
		path:               path,
		cfgUpdateListeners: []func(Config){},
	}

	if err := w.load(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(w.path); err != nil {
		return nil, err
	}

	w.log.Info("config watcher started successfully",
		logging.String("config", w.path))

	go w.watch(ctx, watcher)

	return w, nil
}

// Get return the last update of the configuration
func (w *Watcher) Get() Config {
	w.mu.Lock()
	conf := w.cfg
	w.mu.Unlock()
	return conf
}

// OnConfigUpdate register a function to be called when the configuration is getting updated
func (w *Watcher) OnConfigUpdate(fns ...func(Config)) {
	w.mu.Lock()
	w.cfgUpdateListeners = append(w.cfgUpdateListeners, fns...)
	w.mu.Unlock()
}

func (w *Watcher) load() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cfg, err := Read(w.path)
	if err != nil {
		return err
	}
	w.cfg = cfg
	return nil
}

func (w *Watcher) notify() {
	cfg := w.Get()
	w.mu.Lock()
	listeners := append([]func(Config){}, w.cfgUpdateListeners...)
	w.mu.Unlock()
	for _, f := range listeners {
		f(cfg)
	}
}

func (w *Watcher) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case event := <-watcher.Events:
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Rename == fsnotify.Rename {
				if event.Op&fsnotify.Rename == fsnotify.Rename {
					// editors rename a temp file into place; give the new
					// file a moment to exist before reading it
					time.Sleep(50 * time.Millisecond)
				}
				w.log.Info("configuration updated", logging.String("event", event.Name))
				if err := w.load(); err != nil {
					w.log.Error("unable to load configuration", logging.Error(err))
					continue
				}
				w.notify()
			}
		case err := <-watcher.Errors:
			w.log.Error("config watcher received error event", logging.Error(err))
		case <-ctx.Done():
			return
		}
	}
}
