package suggest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actionnerd/internal/action"
	"actionnerd/internal/completion"
)

type stubClient struct {
	reply string
	err   error
	calls int
}

func (s *stubClient) Complete(ctx context.Context, prompt string, opts completion.Options) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

const goodBatch = `[
  {"id":"explain_code","label":"Explain","icon":"💡","description":"Explain this code"},
  {"id":"find_bugs","label":"Find Bugs","icon":"🐛","description":"Find bugs"},
  {"id":"refactor_code","label":"Refactor","icon":"🔧","description":"Refactor this"},
  {"id":"write_tests","label":"Tests","icon":"🧪","description":"Write tests"}
]`

func pageCtx() *action.Context {
	return &action.Context{
		URL:       "https://example.com/post",
		Title:     "Example",
		Domain:    "example.com",
		Selection: &action.TextSelection{Text: "function foo() { return 1; }"},
	}
}

func TestRemote_Suggest_ParsesCleanReply(t *testing.T) {
	client := &stubClient{reply: goodBatch}
	r := NewRemote(client)

	actions, err := r.Suggest(context.Background(), action.TypeCode, pageCtx())
	require.NoError(t, err)
	require.Len(t, actions, action.BatchSize)
	assert.Equal(t, "explain_code", actions[0].ID)
	assert.Equal(t, 1, client.calls)
}

func TestRemote_Suggest_ExtractsArrayFromProse(t *testing.T) {
	client := &stubClient{reply: "Sure! Here are the actions:\n```json\n" + goodBatch + "\n```\nLet me know."}
	r := NewRemote(client)

	actions, err := r.Suggest(context.Background(), action.TypeCode, pageCtx())
	require.NoError(t, err)
	assert.Equal(t, "write_tests", actions[3].ID)
}

func TestRemote_Suggest_RejectsWrongCount(t *testing.T) {
	three := `[
	  {"id":"a_one","label":"A","icon":"x","description":"d"},
	  {"id":"b_two","label":"B","icon":"x","description":"d"},
	  {"id":"c_three","label":"C","icon":"x","description":"d"}
	]`
	r := NewRemote(&stubClient{reply: three})

	_, err := r.Suggest(context.Background(), action.TypeCode, pageCtx())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadSuggestion))
}

func TestRemote_Suggest_RejectsDuplicateIDs(t *testing.T) {
	dupe := `[
	  {"id":"same","label":"A","icon":"x","description":"d"},
	  {"id":"same","label":"B","icon":"x","description":"d"},
	  {"id":"c_three","label":"C","icon":"x","description":"d"},
	  {"id":"d_four","label":"D","icon":"x","description":"d"}
	]`
	r := NewRemote(&stubClient{reply: dupe})

	_, err := r.Suggest(context.Background(), action.TypeCode, pageCtx())
	require.ErrorIs(t, err, ErrBadSuggestion)
}

func TestRemote_Suggest_RejectsBadIDs(t *testing.T) {
	bad := `[
	  {"id":"Has Space","label":"A","icon":"x","description":"d"},
	  {"id":"b_two","label":"B","icon":"x","description":"d"},
	  {"id":"c_three","label":"C","icon":"x","description":"d"},
	  {"id":"d_four","label":"D","icon":"x","description":"d"}
	]`
	r := NewRemote(&stubClient{reply: bad})

	_, err := r.Suggest(context.Background(), action.TypeCode, pageCtx())
	require.ErrorIs(t, err, ErrBadSuggestion)
}

func TestRemote_Suggest_NoJSONInReply(t *testing.T) {
	r := NewRemote(&stubClient{reply: "I cannot help with that."})

	_, err := r.Suggest(context.Background(), action.TypeCode, pageCtx())
	require.ErrorIs(t, err, ErrBadSuggestion)
}

func TestRemote_Suggest_TransportErrorPropagates(t *testing.T) {
	r := NewRemote(&stubClient{err: fmt.Errorf("connection refused")})

	_, err := r.Suggest(context.Background(), action.TypeCode, pageCtx())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadSuggestion)
}

func TestFindArrayCandidates_SkipsBracketsInsideStrings(t *testing.T) {
	input := `prefix ["a]", "b"] suffix [1, [2, 3]]`
	got := findArrayCandidates(input)
	require.Len(t, got, 2)
	assert.Equal(t, `["a]", "b"]`, got[0])
	assert.Equal(t, `[1, [2, 3]]`, got[1])
}

func TestBuildSuggestPrompt_UsesExcerptOnly(t *testing.T) {
	long := make([]rune, action.ExcerptLimit*2)
	for i := range long {
		long[i] = 'a'
	}
	ctx := &action.Context{
		Title:     "T",
		URL:       "u",
		Selection: &action.TextSelection{Text: string(long)},
	}
	prompt := buildSuggestPrompt(action.TypeLongText, ctx)
	assert.LessOrEqual(t, len(prompt), action.ExcerptLimit+600)
}
