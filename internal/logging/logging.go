// Package logging provides categorized zap loggers for actionNERD.
// Logs are written as JSON to .actionnerd/logs/actionnerd.log so the
// overlay TUI can own the terminal. Before Initialize is called every
// category resolves to a no-op logger, which keeps library code usable
// from tests without setup.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names a subsystem. Get returns a named child logger per
// category so log lines are filterable by subsystem.
type Category string

const (
	CategoryBoot         Category = "boot"         // Startup and wiring
	CategoryBridge       Category = "bridge"       // Message passing between contexts
	CategoryOrchestrator Category = "orchestrator" // Action resolution and execution
	CategorySuggest      Category = "suggest"      // Remote/heuristic suggestion
	CategoryCompletion   Category = "completion"   // LLM service calls
	CategoryUsage        Category = "usage"        // Usage statistics store
	CategoryOverlay      Category = "overlay"      // UI state machine
	CategoryPage         Category = "page"         // Browser attachment, gesture capture
	CategoryConfig       Category = "config"       // Config load and credential watch
)

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	loggers = make(map[Category]*zap.Logger)
)

// Initialize builds the shared file logger. dir is the actionNERD dot
// directory; debug lowers the level floor to Debug.
func Initialize(dir string, debug bool) error {
	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(logsDir, "actionnerd.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)

	mu.Lock()
	defer mu.Unlock()
	root = zap.New(core)
	loggers = make(map[Category]*zap.Logger)
	return nil
}

// SetLogger replaces the root logger. Tests use it to capture output.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	root = l
	loggers = make(map[Category]*zap.Logger)
}

// Get returns the logger for a category.
func Get(cat Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[cat]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[cat]; ok {
		return l
	}
	l := root.Named(string(cat))
	loggers[cat] = l
	return l
}

// Sync flushes buffered log entries. Call on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = root.Sync()
}
