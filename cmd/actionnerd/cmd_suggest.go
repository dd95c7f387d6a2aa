package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"actionnerd/internal/action"
	"actionnerd/internal/classify"
)

// suggestCmd resolves the four actions for a piece of text without the
// overlay. Useful from scripts and for checking what a selection would
// classify as.
var suggestCmd = &cobra.Command{
	Use:   "suggest [text]",
	Short: "Show the four actions for a piece of text",
	Long: `Classifies the given text and prints the four actions the overlay
would offer, ranked by your usage history. Reads stdin when no text
argument is given.

Without an API key configured the actions come from the built-in
per-content-type sets.`,
	RunE: runSuggest,
}

func runSuggest(cmd *cobra.Command, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	pageCtx := textContext(text)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	contentType := classify.Classify(pageCtx)
	actions := eng.orch.GetActions(ctx, pageCtx)

	fmt.Printf("Content type: %s\n\n", contentType)
	for i, act := range actions {
		fmt.Printf("%d. %s %s  [%s]\n", i+1, act.Icon, act.Label, act.ID)
		if act.Description != "" {
			fmt.Printf("   %s\n", act.Description)
		}
	}
	return nil
}

// readInput joins the args, or reads stdin when none are given.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no input text: pass an argument or pipe text on stdin")
	}
	return text, nil
}

func textContext(text string) *action.Context {
	return &action.Context{
		Selection: &action.TextSelection{Text: text},
	}
}
