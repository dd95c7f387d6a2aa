package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"actionnerd/internal/logging"
)

// Manager holds the live configuration and watches the backing file
// for external edits (the options surface rewrites it). Subscribers
// observe credential changes without a restart.
type Manager struct {
	mu       sync.RWMutex
	path     string
	current  Config
	onChange []func(Config)

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool

	// Rapid editor saves produce event bursts; reload at most once
	// per debounce window.
	debounce time.Duration
	lastLoad time.Time
}

// NewManager loads the config at path and returns a manager around it.
func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Manager{
		path:     path,
		current:  cfg,
		debounce: 500 * time.Millisecond,
	}, nil
}

// Current returns the live configuration.
func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnChange registers a callback invoked after every observed reload.
// Callbacks run on the watcher goroutine and must not block.
func (m *Manager) OnChange(fn func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Watch starts observing the config file's directory. Watching the
// directory rather than the file survives the rename-and-replace
// pattern editors and settings UIs use.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	m.watcher = watcher
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.running = true

	go m.watchLoop()
	return nil
}

// Stop halts the watcher.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	<-m.doneCh
}

func (m *Manager) watchLoop() {
	defer close(m.doneCh)
	defer m.watcher.Close()

	log := logging.Get(logging.CategoryConfig)
	base := filepath.Base(m.path)

	for {
		select {
		case <-m.stopCh:
			return
		case ev, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if time.Since(m.lastLoad) < m.debounce {
				continue
			}
			m.lastLoad = time.Now()
			m.reload(log)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (m *Manager) reload(log *zap.Logger) {
	cfg, err := Load(m.path)
	if err != nil {
		log.Warn("config reload failed, keeping previous", zap.Error(err))
		return
	}

	m.mu.Lock()
	prev := m.current
	m.current = cfg
	callbacks := make([]func(Config), len(m.onChange))
	copy(callbacks, m.onChange)
	m.mu.Unlock()

	log.Info("config reloaded",
		zap.Bool("credential_changed", prev.APIKey != cfg.APIKey),
		zap.String("provider", cfg.Provider))

	for _, fn := range callbacks {
		fn(cfg)
	}
}
