package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"actionnerd/internal/action"
	"actionnerd/internal/completion"
	"actionnerd/internal/logging"
)

// ErrBadSuggestion wraps every way a remote reply can be unusable:
// unparsable text, wrong action count, duplicate or malformed IDs.
// Callers recover from it by falling back to Heuristic.
var ErrBadSuggestion = errors.New("unusable remote suggestion")

var actionIDRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Remote obtains candidate actions from the completion service. It
// must never be constructed without a configured credential; the
// orchestrator checks that precondition before calling Suggest.
type Remote struct {
	client completion.Client
}

// NewRemote wraps a completion client as a suggestion source.
func NewRemote(client completion.Client) *Remote {
	return &Remote{client: client}
}

// Suggest asks the service for exactly four actions tailored to the
// content. Any transport, parse or validation failure is returned as
// an error; the caller supplies the fallback.
func (r *Remote) Suggest(ctx context.Context, ct action.ContentType, pageCtx *action.Context) ([]action.Action, error) {
	prompt := buildSuggestPrompt(ct, pageCtx)

	reply, err := r.client.Complete(ctx, prompt, completion.SuggestOptions)
	if err != nil {
		return nil, fmt.Errorf("suggestion call failed: %w", err)
	}

	actions, err := parseSuggestions(reply)
	if err != nil {
		logging.Get(logging.CategorySuggest).Warn("remote suggestion rejected",
			zap.Error(err),
			zap.String("reply", truncateForLog(reply)))
		return nil, err
	}
	return actions, nil
}

func buildSuggestPrompt(ct action.ContentType, pageCtx *action.Context) string {
	var b strings.Builder
	b.WriteString("You suggest quick actions for text a user selected on a web page.\n")
	fmt.Fprintf(&b, "Page title: %s\nPage URL: %s\nDetected content type: %s\n\n", pageCtx.Title, pageCtx.URL, ct)
	b.WriteString("Selected content:\n\"\"\"\n")
	excerpt := pageCtx.Content()
	if runes := []rune(excerpt); len(runes) > action.ExcerptLimit {
		excerpt = string(runes[:action.ExcerptLimit])
	}
	b.WriteString(excerpt)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString("Propose exactly 4 actions the user is most likely to want. ")
	b.WriteString("Reply with only a JSON array of 4 objects, each with keys ")
	b.WriteString(`"id" (snake_case, stable), "label" (max 3 words), "icon" (one emoji), "description" (one imperative sentence describing what to do with the content).`)
	return b.String()
}

// parseSuggestions extracts and validates the 4-action batch from a
// raw model reply.
func parseSuggestions(reply string) ([]action.Action, error) {
	candidates := findArrayCandidates(reply)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no JSON array in reply", ErrBadSuggestion)
	}

	var lastErr error
	for _, candidate := range candidates {
		var actions []action.Action
		if err := json.Unmarshal([]byte(candidate), &actions); err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrBadSuggestion, err)
			continue
		}
		if err := validateBatch(actions); err != nil {
			lastErr = err
			continue
		}
		return actions, nil
	}
	return nil, lastErr
}

func validateBatch(actions []action.Action) error {
	if len(actions) != action.BatchSize {
		return fmt.Errorf("%w: got %d actions, want %d", ErrBadSuggestion, len(actions), action.BatchSize)
	}
	seen := make(map[string]bool, len(actions))
	for _, a := range actions {
		if !actionIDRe.MatchString(a.ID) {
			return fmt.Errorf("%w: bad action id %q", ErrBadSuggestion, a.ID)
		}
		if seen[a.ID] {
			return fmt.Errorf("%w: duplicate action id %q", ErrBadSuggestion, a.ID)
		}
		seen[a.ID] = true
		if a.Label == "" || a.Description == "" {
			return fmt.Errorf("%w: action %q missing label or description", ErrBadSuggestion, a.ID)
		}
	}
	return nil
}

func truncateForLog(s string) string {
	if len(s) <= 300 {
		return s
	}
	return s[:300] + "..."
}
