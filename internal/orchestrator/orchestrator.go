// Package orchestrator is the privileged, long-lived side of the
// engine. It owns the completion-service lifecycle and merges the
// remote and heuristic suggesters, the ranker and the usage store into
// two entry points: resolving actions for a context and executing one.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"actionnerd/internal/action"
	"actionnerd/internal/classify"
	"actionnerd/internal/completion"
	"actionnerd/internal/config"
	"actionnerd/internal/logging"
	"actionnerd/internal/suggest"
	"actionnerd/internal/usage"
)

// ErrNoCredential is fatal to an execute request: unlike suggestions,
// execution has no local fallback and must tell the user to configure
// a credential.
var ErrNoCredential = errors.New("completion credential not configured")

// ErrEmptyContext rejects gestures that carry no usable content. The
// overlay filters these before sending; the orchestrator still guards.
var ErrEmptyContext = errors.New("empty selection context")

// executeCallTimeout bounds a single execute completion. It must stay
// below the overlay's bridge wait so a hung provider releases the
// one-at-a-time serve loop before callers give up.
const executeCallTimeout = 45 * time.Second

// Suggester is the remote suggestion source. Declared here so tests
// can count calls without a network.
type Suggester interface {
	Suggest(ctx context.Context, ct action.ContentType, pageCtx *action.Context) ([]action.Action, error)
}

// Orchestrator coordinates suggesters, ranking, stats and execution.
type Orchestrator struct {
	cfg   *config.Manager
	store *usage.Store

	// remote and execClient are rebuilt when the credential changes.
	// They are nil whenever no credential is configured. The config
	// watcher updates them from its own goroutine, hence the mutex.
	mu         sync.RWMutex
	remote     Suggester
	execClient completion.Client

	// newClient is swappable for tests.
	newClient func(completion.ProviderSettings) (completion.Client, error)
}

// New wires an orchestrator to live config and the usage store, and
// subscribes to credential changes so a key added through the settings
// surface takes effect without a restart.
func New(cfg *config.Manager, store *usage.Store) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		store:     store,
		newClient: completion.NewClient,
	}
	o.rebuildClient(cfg.Current())
	cfg.OnChange(o.rebuildClient)
	return o
}

func (o *Orchestrator) rebuildClient(cfg config.Config) {
	log := logging.Get(logging.CategoryOrchestrator)
	if !cfg.HasCredential() {
		o.setClients(nil, nil)
		log.Info("no credential configured, heuristic suggestions only")
		return
	}

	client, err := o.newClient(completion.ProviderSettings{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout(),
	})
	if err != nil {
		o.setClients(nil, nil)
		log.Warn("completion client unavailable, falling back to heuristics", zap.Error(err))
		return
	}

	o.setClients(suggest.NewRemote(client), client)
	log.Info("completion client ready", zap.String("provider", cfg.Provider))
}

func (o *Orchestrator) setClients(remote Suggester, client completion.Client) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.remote = remote
	o.execClient = client
}

func (o *Orchestrator) clients() (Suggester, completion.Client) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.remote, o.execClient
}

// GetActions resolves the ranked action quadruple for a context. It
// never fails: without a credential, or on any remote trouble, the
// heuristic table answers instead.
func (o *Orchestrator) GetActions(ctx context.Context, pageCtx *action.Context) []action.Action {
	log := logging.Get(logging.CategoryOrchestrator)

	if pageCtx == nil || pageCtx.Empty() {
		log.Debug("empty context reached GetActions, serving generic quadruple")
		return action.Rank(suggest.Heuristic(action.TypeGeneric), o.store.Snapshot())
	}

	ct := classify.Classify(pageCtx)
	remoteSuggester, _ := o.clients()

	var actions []action.Action
	if remoteSuggester != nil {
		callCtx, cancel := context.WithTimeout(ctx, o.cfg.Current().Timeout())
		remote, err := remoteSuggester.Suggest(callCtx, ct, pageCtx)
		cancel()
		if err != nil {
			log.Debug("remote suggestion failed, using heuristics",
				zap.String("content_type", string(ct)),
				zap.Error(err))
		} else {
			actions = remote
		}
	}
	if actions == nil {
		actions = suggest.Heuristic(ct)
	}

	ranked := action.Rank(actions, o.store.Snapshot())
	log.Debug("actions resolved",
		zap.String("content_type", string(ct)),
		zap.Strings("action_ids", actionIDs(ranked)))
	return ranked
}

// ExecuteAction runs one action over the full selected content and
// returns the raw generated text. A missing credential is fatal to the
// request. Service failures propagate; there is no automatic retry.
// On success the action's usage is recorded exactly once.
func (o *Orchestrator) ExecuteAction(ctx context.Context, act action.Action, content string, pageCtx *action.Context) (string, error) {
	_, execClient := o.clients()
	if execClient == nil {
		return "", ErrNoCredential
	}
	// Element gestures legitimately carry no text; the descriptor is
	// the content. Only text gestures require non-whitespace content.
	if strings.TrimSpace(content) == "" && (pageCtx == nil || pageCtx.Element == nil) {
		return "", ErrEmptyContext
	}

	prompt := buildExecutePrompt(act, content, pageCtx)

	callCtx, cancel := context.WithTimeout(ctx, executeCallTimeout)
	defer cancel()

	result, err := execClient.Complete(callCtx, prompt, completion.ExecuteOptions)
	if err != nil {
		return "", fmt.Errorf("action %q failed: %w", act.ID, err)
	}

	if err := o.store.Record(act.ID); err != nil {
		// The user already has their result; losing one click is a
		// logged defect, not a request failure.
		logging.Get(logging.CategoryOrchestrator).Error("failed to record usage",
			zap.String("action_id", act.ID),
			zap.Error(err))
	}

	return result, nil
}

// RecordUsage services explicit UPDATE_STATS messages.
func (o *Orchestrator) RecordUsage(actionID string) error {
	return o.store.Record(actionID)
}

// UsageSnapshot exposes current stats for the CLI stats view.
func (o *Orchestrator) UsageSnapshot() action.UsageStats {
	return o.store.Snapshot()
}

// ResetUsage wipes all statistics. User-initiated only.
func (o *Orchestrator) ResetUsage() error {
	return o.store.Reset()
}

func buildExecutePrompt(act action.Action, content string, pageCtx *action.Context) string {
	instruction := act.Description
	if instruction == "" {
		instruction = fmt.Sprintf("Perform %q on the following content.", act.Label)
	}
	var b strings.Builder
	b.WriteString(instruction)
	if strings.TrimSpace(content) != "" {
		b.WriteString("\n\nContent:\n\"\"\"\n")
		b.WriteString(content)
		b.WriteString("\n\"\"\"\n")
	} else if pageCtx != nil && pageCtx.Element != nil {
		b.WriteString("\n\nTarget element:\n")
		b.WriteString(describeElement(pageCtx.Element))
	}
	if pageCtx != nil && (pageCtx.Title != "" || pageCtx.URL != "") {
		fmt.Fprintf(&b, "\nPage context: %q (%s)\n", pageCtx.Title, pageCtx.URL)
	}
	b.WriteString("\nReply with the result only, no preamble.")
	return b.String()
}

// describeElement renders a text-less element descriptor for the
// prompt: tag, identity and the attributes that carry meaning for
// images, links and controls.
func describeElement(el *action.ElementDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s>", el.TagName)
	if el.ID != "" {
		fmt.Fprintf(&b, " id=%q", el.ID)
	}
	if len(el.Classes) > 0 {
		fmt.Fprintf(&b, " classes=%q", strings.Join(el.Classes, " "))
	}
	b.WriteString("\n")
	for _, key := range []string{"src", "href", "alt", "title", "aria-label", "role", "type"} {
		if v := el.Attributes[key]; v != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, v)
		}
	}
	return b.String()
}

func actionIDs(actions []action.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.ID
	}
	return out
}
