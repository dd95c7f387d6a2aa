package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"actionnerd/internal/config"
	"actionnerd/internal/logging"
	"actionnerd/internal/orchestrator"
	"actionnerd/internal/usage"
)

var (
	// Global flags
	verbose    bool
	configPath string
	browserURL string
)

// rootCmd launches the interactive overlay when run without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "actionnerd",
	Short: "actionNERD - contextual action overlay for the browser",
	Long: `actionNERD attaches to a running browser and turns what you select
or alt-click into a palette of four AI actions, ranked by how often
you use them.

Select text or alt-click an element on the page, pick an action in the
overlay, and copy or insert the result. Without an API key configured
the palette still works from built-in per-content-type actions.

Run without arguments to start the overlay. Use the suggest and
execute subcommands for one-shot use from scripts.`,
	RunE: runOverlay,
}

// engine wires the non-UI half of the pipeline for one-shot commands.
type engine struct {
	manager *config.Manager
	store   *usage.Store
	orch    *orchestrator.Orchestrator
}

func (e *engine) close() {
	if e.store != nil {
		_ = e.store.Close()
	}
	logging.Sync()
}

// newEngine loads config, opens the usage store, and builds the
// orchestrator. Callers must close() it.
func newEngine() (*engine, error) {
	dir := config.DefaultDir()
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	manager, err := config.NewManager(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := manager.Current()
	if err := logging.Initialize(dir, verbose || cfg.Logging.DebugMode); err != nil {
		return nil, err
	}

	store, err := usage.Open(config.UsageDBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open usage store: %w", err)
	}

	return &engine{
		manager: manager,
		store:   store,
		orch:    orchestrator.New(manager, store),
	}, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.actionnerd/config.json)")
	rootCmd.Flags().StringVar(&browserURL, "browser-url", "", "DevTools websocket URL of the browser to attach to")

	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(executeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
