package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actionnerd/internal/action"
)

func textCtx(text string) *action.Context {
	return &action.Context{
		URL:       "https://example.com",
		Domain:    "example.com",
		Selection: &action.TextSelection{Text: text},
	}
}

func quadruple(prefix string) []action.Action {
	return []action.Action{
		{ID: prefix + "_one", Label: "1", Icon: "x", Description: "d"},
		{ID: prefix + "_two", Label: "2", Icon: "x", Description: "d"},
		{ID: prefix + "_three", Label: "3", Icon: "x", Description: "d"},
		{ID: prefix + "_four", Label: "4", Icon: "x", Description: "d"},
	}
}

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateIdle, m.State())

	v, ok := m.Gesture(textCtx("hello world"))
	require.True(t, ok)
	assert.Equal(t, StateLoading, m.State())

	require.True(t, m.ActionsArrived(v, quadruple("a")))
	assert.Equal(t, StateShowingPalette, m.State())

	ev, ok := m.Choose(1)
	require.True(t, ok)
	assert.Equal(t, StateExecuting, m.State())
	assert.Equal(t, "a_two", m.Chosen().ID)

	require.True(t, m.ExecutionDone(ev, "generated text"))
	assert.Equal(t, StateShowingResult, m.State())
	assert.Equal(t, "generated text", m.Result())

	require.True(t, m.Dismiss())
	assert.Equal(t, StateIdle, m.State())
}

func TestMachine_SecondGestureSupersedesFirst(t *testing.T) {
	m := NewMachine()

	v1, ok := m.Gesture(textCtx("first selection"))
	require.True(t, ok)
	v2, ok := m.Gesture(textCtx("second selection"))
	require.True(t, ok)
	require.NotEqual(t, v1, v2)

	// First response arrives late: dropped, still loading.
	assert.False(t, m.ActionsArrived(v1, quadruple("old")))
	assert.Equal(t, StateLoading, m.State())
	assert.Empty(t, m.Actions())

	// Second response renders.
	require.True(t, m.ActionsArrived(v2, quadruple("new")))
	assert.Equal(t, StateShowingPalette, m.State())
	assert.Equal(t, "new_one", m.Actions()[0].ID)
}

func TestMachine_TimeoutThenLateResponseIsDropped(t *testing.T) {
	m := NewMachine()
	v, _ := m.Gesture(textCtx("selection"))

	require.True(t, m.RequestFailed(v, "Request timed out"))
	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, "Request timed out", m.TakeNotice())

	// The real response arrives after the timeout: never rendered.
	assert.False(t, m.ActionsArrived(v, quadruple("late")))
	assert.Equal(t, StateIdle, m.State())
	assert.Empty(t, m.Actions())
}

func TestMachine_StaleTimeoutIgnoredAfterSupersession(t *testing.T) {
	m := NewMachine()
	v1, _ := m.Gesture(textCtx("first"))
	v2, _ := m.Gesture(textCtx("second"))

	// The first request's timer fires; the second request must keep
	// loading.
	assert.False(t, m.RequestFailed(v1, "Request timed out"))
	assert.Equal(t, StateLoading, m.State())

	require.True(t, m.ActionsArrived(v2, quadruple("a")))
	assert.Equal(t, StateShowingPalette, m.State())
}

func TestMachine_SelectionChangeDuringExecutionIsIgnored(t *testing.T) {
	m := NewMachine()
	v, _ := m.Gesture(textCtx("code"))
	m.ActionsArrived(v, quadruple("a"))
	ev, _ := m.Choose(0)

	_, ok := m.Gesture(textCtx("different selection"))
	assert.False(t, ok)
	assert.Equal(t, StateExecuting, m.State())

	// And dismissal does not interrupt either.
	assert.False(t, m.Dismiss())

	require.True(t, m.ExecutionDone(ev, "done"))
	assert.Equal(t, StateShowingResult, m.State())
}

func TestMachine_GestureDuringLoadingAlwaysAccepted(t *testing.T) {
	m := NewMachine()
	_, ok := m.Gesture(textCtx("first"))
	require.True(t, ok)

	_, ok = m.Gesture(textCtx("second"))
	assert.True(t, ok)
	assert.Equal(t, StateLoading, m.State())
}

func TestMachine_ElementGestureWithoutTextAccepted(t *testing.T) {
	m := NewMachine()

	// Images, charts and icon buttons carry no inner text; the
	// descriptor alone must be enough to open the palette.
	imgCtx := &action.Context{
		URL:     "https://example.com/photo",
		Domain:  "example.com",
		Element: &action.ElementDescriptor{TagName: "img"},
	}
	v, ok := m.Gesture(imgCtx)
	require.True(t, ok)
	assert.NotZero(t, v)
	assert.Equal(t, StateLoading, m.State())

	ok = m.ActionsArrived(v, quadruple("img"))
	require.True(t, ok)
	assert.Equal(t, StateShowingPalette, m.State())
}

func TestMachine_EmptyGestureSuppressed(t *testing.T) {
	m := NewMachine()

	_, ok := m.Gesture(textCtx("   \n  "))
	assert.False(t, ok)
	assert.Equal(t, StateIdle, m.State())

	_, ok = m.Gesture(nil)
	assert.False(t, ok)
}

func TestMachine_EmptyGestureTearsDownPalette(t *testing.T) {
	m := NewMachine()
	v, _ := m.Gesture(textCtx("text"))
	m.ActionsArrived(v, quadruple("a"))
	require.Equal(t, StateShowingPalette, m.State())

	// Losing the selection while the palette is up dismisses it.
	_, ok := m.Gesture(textCtx(""))
	assert.False(t, ok)
	assert.Equal(t, StateIdle, m.State())
}

func TestMachine_ExecutionFailureReturnsToIdle(t *testing.T) {
	m := NewMachine()
	v, _ := m.Gesture(textCtx("text"))
	m.ActionsArrived(v, quadruple("a"))
	ev, _ := m.Choose(0)

	require.True(t, m.ExecutionFailed(ev, "Action failed: 503"))
	assert.Equal(t, StateIdle, m.State())
	assert.Equal(t, "Action failed: 503", m.TakeNotice())
}

func TestMachine_ChooseOutOfRange(t *testing.T) {
	m := NewMachine()
	v, _ := m.Gesture(textCtx("text"))
	m.ActionsArrived(v, quadruple("a"))

	_, ok := m.Choose(4)
	assert.False(t, ok)
	_, ok = m.Choose(-1)
	assert.False(t, ok)
	assert.Equal(t, StateShowingPalette, m.State())
}

func TestMachine_EmptyActionBatchNotices(t *testing.T) {
	m := NewMachine()
	v, _ := m.Gesture(textCtx("text"))

	assert.False(t, m.ActionsArrived(v, nil))
	assert.Equal(t, StateIdle, m.State())
	assert.NotEmpty(t, m.TakeNotice())
}
