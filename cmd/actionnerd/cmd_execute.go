package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"actionnerd/internal/action"
	"actionnerd/internal/classify"
	"actionnerd/internal/suggest"
)

var executePlain bool

// executeCmd runs one action against a piece of text and prints the
// result. Requires an API key.
var executeCmd = &cobra.Command{
	Use:   "execute <action-id> [text]",
	Short: "Run a single action against a piece of text",
	Long: `Runs the named action against the given text and prints the result.
Reads stdin when no text argument is given.

The action ID is one of the snake_case IDs shown by 'actionnerd
suggest', e.g. explain_code or summarize. An unknown ID is sent to the
service as-is.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExecute,
}

func init() {
	executeCmd.Flags().BoolVar(&executePlain, "plain", false, "print the raw result without markdown rendering")
}

func runExecute(cmd *cobra.Command, args []string) error {
	actionID := args[0]
	text, err := readInput(args[1:])
	if err != nil {
		return err
	}

	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.close()

	pageCtx := textContext(text)
	act := resolveAction(actionID, pageCtx)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := eng.orch.ExecuteAction(ctx, act, text, pageCtx)
	if err != nil {
		return err
	}

	if executePlain {
		fmt.Println(result)
		return nil
	}
	rendered, err := glamour.Render(result, "auto")
	if err != nil {
		fmt.Println(result)
		return nil
	}
	fmt.Print(rendered)
	return nil
}

// resolveAction finds the named action in the content type's built-in
// set so the service sees its real description. Unknown IDs pass
// through with the ID as the label.
func resolveAction(actionID string, pageCtx *action.Context) action.Action {
	contentType := classify.Classify(pageCtx)
	for _, act := range suggest.Heuristic(contentType) {
		if act.ID == actionID {
			return act
		}
	}
	for _, act := range suggest.Heuristic(action.TypeGeneric) {
		if act.ID == actionID {
			return act
		}
	}
	return action.Action{ID: actionID, Label: actionID}
}
