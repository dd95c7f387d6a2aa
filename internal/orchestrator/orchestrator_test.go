package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actionnerd/internal/action"
	"actionnerd/internal/completion"
	"actionnerd/internal/config"
	"actionnerd/internal/usage"
)

type countingSuggester struct {
	calls   int
	actions []action.Action
	err     error
}

func (c *countingSuggester) Suggest(ctx context.Context, ct action.ContentType, pageCtx *action.Context) ([]action.Action, error) {
	c.calls++
	return c.actions, c.err
}

type stubCompletion struct {
	reply string
	err   error
	calls int

	lastPrompt  string
	hadDeadline bool
}

func (s *stubCompletion) Complete(ctx context.Context, prompt string, opts completion.Options) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	_, s.hadDeadline = ctx.Deadline()
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestOrchestrator(t *testing.T, apiKey string) (*Orchestrator, *usage.Store) {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("ACTIONNERD_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfgPath := filepath.Join(dir, "config.json")
	cfg := config.Default()
	cfg.APIKey = apiKey
	require.NoError(t, config.Save(cfgPath, cfg))

	mgr, err := config.NewManager(cfgPath)
	require.NoError(t, err)

	store, err := usage.Open(filepath.Join(dir, "usage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	o := &Orchestrator{
		cfg:   mgr,
		store: store,
		newClient: func(s completion.ProviderSettings) (completion.Client, error) {
			return &stubCompletion{reply: "stub"}, nil
		},
	}
	o.rebuildClient(mgr.Current())
	return o, store
}

func codeContext() *action.Context {
	return &action.Context{
		URL:       "https://example.com/article",
		Title:     "Example",
		Domain:    "example.com",
		Selection: &action.TextSelection{Text: "function foo() { return 1; }"},
	}
}

func TestGetActions_NoCredentialNeverCallsRemote(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	remote := &countingSuggester{}
	// Even if a suggester were somehow wired, no credential means no
	// remote; New leaves it nil and rebuild keeps it nil.
	require.Nil(t, o.remote)
	o.newClient = func(s completion.ProviderSettings) (completion.Client, error) {
		t.Fatal("client factory must not run without a credential")
		return nil, nil
	}
	o.rebuildClient(o.cfg.Current())

	actions := o.GetActions(context.Background(), codeContext())

	require.Len(t, actions, action.BatchSize)
	assert.Equal(t, 0, remote.calls)
	// Heuristic Code quadruple, untouched usage, original order.
	assert.Equal(t, []string{"explain_code", "find_bugs", "refactor_code", "write_tests"},
		actionIDs(actions))
}

func TestGetActions_RemoteSuccessIsRankedAndReturned(t *testing.T) {
	o, store := newTestOrchestrator(t, "key")
	remote := &countingSuggester{actions: []action.Action{
		{ID: "alpha", Label: "A", Icon: "x", Description: "d"},
		{ID: "beta", Label: "B", Icon: "x", Description: "d"},
		{ID: "gamma", Label: "C", Icon: "x", Description: "d"},
		{ID: "delta", Label: "D", Icon: "x", Description: "d"},
	}}
	o.setClients(remote, &stubCompletion{})

	require.NoError(t, store.Record("delta"))

	actions := o.GetActions(context.Background(), codeContext())

	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, []string{"delta", "alpha", "beta", "gamma"}, actionIDs(actions))
}

func TestGetActions_RemoteFailureFallsBackWholesale(t *testing.T) {
	o, _ := newTestOrchestrator(t, "key")
	remote := &countingSuggester{err: fmt.Errorf("wrong count")}
	o.setClients(remote, &stubCompletion{})

	actions := o.GetActions(context.Background(), codeContext())

	assert.Equal(t, 1, remote.calls)
	require.Len(t, actions, action.BatchSize)
	assert.Equal(t, "explain_code", actions[0].ID)
}

func TestGetActions_AlwaysFour(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	for _, ctx := range []*action.Context{
		nil,
		{},
		{Selection: &action.TextSelection{Text: "   "}},
		codeContext(),
	} {
		assert.Len(t, o.GetActions(context.Background(), ctx), action.BatchSize)
	}
}

func imageContext() *action.Context {
	return &action.Context{
		URL:    "https://example.com/gallery",
		Title:  "Gallery",
		Domain: "example.com",
		Element: &action.ElementDescriptor{
			TagName: "img",
			Attributes: map[string]string{
				"src": "https://example.com/cat.jpg",
				"alt": "a cat",
			},
		},
	}
}

func TestGetActions_ElementContextWithoutTextIsClassified(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")

	actions := o.GetActions(context.Background(), imageContext())

	require.Len(t, actions, action.BatchSize)
	ids := make([]string, 0, len(actions))
	for _, a := range actions {
		ids = append(ids, a.ID)
	}
	// The image quadruple, not the generic fallback.
	assert.Equal(t, []string{"describe_image", "explain_context", "suggest_caption", "suggest_alt_text"}, ids)
}

func TestExecuteAction_ElementContextWithoutTextSucceeds(t *testing.T) {
	o, store := newTestOrchestrator(t, "")
	stub := &stubCompletion{reply: "a tabby cat on a sofa"}
	o.setClients(nil, stub)

	act := action.Action{ID: "describe_image", Label: "Describe", Description: "Describe what this image likely shows"}
	result, err := o.ExecuteAction(context.Background(), act, "", imageContext())

	require.NoError(t, err)
	assert.Equal(t, "a tabby cat on a sofa", result)
	assert.Contains(t, stub.lastPrompt, "<img>")
	assert.Contains(t, stub.lastPrompt, "https://example.com/cat.jpg")
	assert.Equal(t, 1, store.Snapshot()["describe_image"].Clicks)
}

func TestExecuteAction_EmptyTextContextStillRejected(t *testing.T) {
	o, store := newTestOrchestrator(t, "")
	o.setClients(nil, &stubCompletion{reply: "never"})

	textCtx := &action.Context{Selection: &action.TextSelection{Text: "   "}}
	_, err := o.ExecuteAction(context.Background(), action.Action{ID: "summarize"}, "   ", textCtx)

	require.ErrorIs(t, err, ErrEmptyContext)
	assert.Empty(t, store.Snapshot())
}

func TestExecuteAction_BoundsTheCompletionCall(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")
	stub := &stubCompletion{reply: "ok"}
	o.setClients(nil, stub)

	_, err := o.ExecuteAction(context.Background(), action.Action{ID: "summarize", Description: "Summarize"}, "some text", codeContext())

	require.NoError(t, err)
	assert.True(t, stub.hadDeadline, "execute call must carry a deadline even when the caller's context has none")
}

func TestExecuteAction_NoCredentialIsFatalAndDoesNotTouchStats(t *testing.T) {
	o, store := newTestOrchestrator(t, "")

	_, err := o.ExecuteAction(context.Background(),
		action.Action{ID: "summarize", Description: "Summarize this"},
		"some content", codeContext())

	require.ErrorIs(t, err, ErrNoCredential)
	assert.Empty(t, store.Snapshot())
}

func TestExecuteAction_SuccessRecordsExactlyOnce(t *testing.T) {
	o, store := newTestOrchestrator(t, "key")
	stub := &stubCompletion{reply: "a fine summary"}
	o.setClients(nil, stub)

	start := time.Now()
	result, err := o.ExecuteAction(context.Background(),
		action.Action{ID: "summarize", Description: "Summarize this"},
		"long text to summarize", codeContext())

	require.NoError(t, err)
	assert.Equal(t, "a fine summary", result)
	assert.Equal(t, 1, stub.calls)

	got := store.Snapshot()["summarize"]
	assert.Equal(t, 1, got.Clicks)
	require.NotNil(t, got.LastUsed)
	assert.False(t, got.LastUsed.Before(start))
}

func TestExecuteAction_ServiceFailurePropagatesWithoutStats(t *testing.T) {
	o, store := newTestOrchestrator(t, "key")
	o.setClients(nil, &stubCompletion{err: fmt.Errorf("503 from service")})

	_, err := o.ExecuteAction(context.Background(),
		action.Action{ID: "summarize", Description: "Summarize"},
		"content", codeContext())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Empty(t, store.Snapshot())
}

func TestEndToEnd_CodeSelectionWithoutCredential(t *testing.T) {
	o, store := newTestOrchestrator(t, "")
	require.NoError(t, store.Record("write_tests"))
	require.NoError(t, store.Record("write_tests"))

	actions := o.GetActions(context.Background(), codeContext())

	// Code heuristic quadruple, ranked by current usage.
	assert.Equal(t, []string{"write_tests", "explain_code", "find_bugs", "refactor_code"},
		actionIDs(actions))
}

func TestHandle_MessageContract(t *testing.T) {
	o, _ := newTestOrchestrator(t, "")

	t.Run("get actions", func(t *testing.T) {
		payload, _ := json.Marshal(action.GetActionsRequest{Context: *codeContext()})
		raw, err := o.Handle(context.Background(), action.MsgGetActions, payload)
		require.NoError(t, err)

		var resp action.GetActionsResponse
		require.NoError(t, json.Unmarshal(raw, &resp))
		assert.Len(t, resp.Actions, action.BatchSize)
	})

	t.Run("execute without credential reports in payload", func(t *testing.T) {
		payload, _ := json.Marshal(action.ExecuteActionRequest{
			Action:  action.Action{ID: "summarize", Description: "d"},
			Content: "text",
			Context: *codeContext(),
		})
		raw, err := o.Handle(context.Background(), action.MsgExecuteAction, payload)
		require.NoError(t, err)

		var resp action.ExecuteActionResponse
		require.NoError(t, json.Unmarshal(raw, &resp))
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "API key")
	})

	t.Run("update stats", func(t *testing.T) {
		payload, _ := json.Marshal(action.UpdateStatsRequest{ActionID: "explain"})
		raw, err := o.Handle(context.Background(), action.MsgUpdateStats, payload)
		require.NoError(t, err)

		var resp action.UpdateStatsResponse
		require.NoError(t, json.Unmarshal(raw, &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 1, o.UsageSnapshot()["explain"].Clicks)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := o.Handle(context.Background(), "NOPE", nil)
		require.Error(t, err)
	})
}
