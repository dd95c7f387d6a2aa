package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"actionnerd/internal/bridge"
	"actionnerd/internal/overlay"
	"actionnerd/internal/page"
)

// runOverlay wires the full pipeline: config watch, usage store,
// orchestrator behind the bridge, browser gesture watcher, and the
// overlay TUI. The TUI owns the terminal; everything else logs to
// the dot directory.
func runOverlay(cmd *cobra.Command, args []string) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	if err := eng.manager.Watch(); err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}
	defer eng.manager.Stop()

	cfg := eng.manager.Current()
	target := browserURL
	if target == "" {
		target = cfg.BrowserURL
	}
	if target == "" {
		return fmt.Errorf("no browser to attach to: set browser_url in the config or pass --browser-url")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watcher := page.NewWatcher()
	if err := watcher.Connect(ctx, target); err != nil {
		return err
	}
	defer watcher.Close()

	br := bridge.New()
	defer br.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		br.Serve(gctx, bridge.HandlerFunc(eng.orch.Handle))
		return nil
	})
	g.Go(func() error {
		err := watcher.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	model := overlay.NewModel(br, watcher.Gestures(), watcher,
		cfg.RequestTimeout(), cfg.TeardownDelay())
	program := tea.NewProgram(model, tea.WithAltScreen())

	g.Go(func() error {
		<-gctx.Done()
		program.Quit()
		return nil
	})

	_, runErr := program.Run()
	cancel()
	br.Close()

	if err := g.Wait(); err != nil {
		return err
	}
	return runErr
}
