package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"actionnerd/internal/action"
	"actionnerd/internal/bridge"
	"actionnerd/internal/logging"
)

// Inserter places generated text into the page's focused editable
// target. Nil when no page is attached.
type Inserter interface {
	InsertText(text string) error
}

// Messages driving the overlay update loop.
type (
	// GestureMsg carries a captured context from the page watcher. An
	// empty context reports selection loss and tears the surface down.
	GestureMsg struct{ Context *action.Context }

	actionsMsg struct {
		version uint64
		actions []action.Action
		err     error
	}
	execMsg struct {
		version uint64
		result  string
		errText string
		failed  bool
	}
	timeoutMsg struct{ version uint64 }
	noticeExpiredMsg struct{}
)

// Model is the overlay TUI shell around the state machine.
type Model struct {
	machine *Machine
	bridge  *bridge.Bridge

	gestures <-chan GestureMsg

	spinner  spinner.Model
	styles   Styles
	renderer *glamour.TermRenderer

	inserter Inserter

	timeout       time.Duration
	teardownDelay time.Duration

	width  int
	height int

	notice   string
	selected int
	quitting bool
}

// NewModel builds the overlay model. gestures may be nil for one-shot
// use; inserter may be nil when no live page is attached.
func NewModel(br *bridge.Bridge, gestures <-chan GestureMsg, inserter Inserter, timeout, teardownDelay time.Duration) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if teardownDelay <= 0 {
		teardownDelay = 150 * time.Millisecond
	}

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(72),
	)

	return Model{
		machine:       NewMachine(),
		bridge:        br,
		gestures:      gestures,
		spinner:       sp,
		styles:        DefaultStyles(),
		renderer:      renderer,
		inserter:      inserter,
		timeout:       timeout,
		teardownDelay: teardownDelay,
	}
}

// Init starts the spinner and the gesture listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForGesture())
}

func (m Model) waitForGesture() tea.Cmd {
	if m.gestures == nil {
		return nil
	}
	ch := m.gestures
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Update is the overlay event loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case GestureMsg:
		return m.handleGesture(msg)

	case actionsMsg:
		return m.handleActions(msg)

	case timeoutMsg:
		if m.machine.RequestFailed(msg.version, "Request timed out") {
			m.notice = m.machine.TakeNotice()
			return m, m.expireNotice()
		}
		return m, nil

	case execMsg:
		return m.handleExec(msg)

	case noticeExpiredMsg:
		m.notice = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleGesture(msg GestureMsg) (tea.Model, tea.Cmd) {
	version, ok := m.machine.Gesture(msg.Context)
	if !ok {
		// Rejected: either executing, or the gesture was empty and
		// tore the surface down.
		return m, m.waitForGesture()
	}
	m.selected = 0
	return m, tea.Batch(
		m.requestActions(version, msg.Context),
		tea.Tick(m.timeout, func(time.Time) tea.Msg { return timeoutMsg{version: version} }),
		m.waitForGesture(),
	)
}

// requestActions issues GET_ACTIONS over the bridge. The command runs
// on its own goroutine; only the returned message touches the model.
func (m Model) requestActions(version uint64, pageCtx *action.Context) tea.Cmd {
	br := m.bridge
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		raw, err := br.Call(ctx, action.MsgGetActions, action.GetActionsRequest{Context: *pageCtx})
		if err != nil {
			return actionsMsg{version: version, err: err}
		}
		var resp action.GetActionsResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return actionsMsg{version: version, err: err}
		}
		return actionsMsg{version: version, actions: resp.Actions}
	}
}

func (m Model) handleActions(msg actionsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		notice := "Could not load actions"
		if errors.Is(msg.err, bridge.ErrTimeout) {
			notice = "Request timed out"
		}
		if m.machine.RequestFailed(msg.version, notice) {
			m.notice = m.machine.TakeNotice()
			return m, m.expireNotice()
		}
		return m, nil
	}

	if !m.machine.ActionsArrived(msg.version, msg.actions) {
		if n := m.machine.TakeNotice(); n != "" {
			m.notice = n
			return m, m.expireNotice()
		}
		logging.Get(logging.CategoryOverlay).Debug("stale actions discarded",
			zap.Uint64("version", msg.version))
		return m, nil
	}
	return m, nil
}

func (m Model) handleExec(msg execMsg) (tea.Model, tea.Cmd) {
	if msg.failed {
		if m.machine.ExecutionFailed(msg.version, msg.errText) {
			m.notice = m.machine.TakeNotice()
			return m, m.expireNotice()
		}
		return m, nil
	}
	m.machine.ExecutionDone(msg.version, msg.result)
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		// Render one cleared frame, then quit after the teardown delay.
		m.quitting = true
		return m, tea.Tick(m.teardownDelay, func(time.Time) tea.Msg { return tea.QuitMsg{} })

	case "esc":
		m.machine.Dismiss()
		return m, nil

	case "up", "k":
		if m.machine.State() == StateShowingPalette && m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if m.machine.State() == StateShowingPalette && m.selected < len(m.machine.Actions())-1 {
			m.selected++
		}
		return m, nil

	case "enter":
		if m.machine.State() == StateShowingPalette {
			return m.choose(m.selected)
		}
		return m, nil

	case "1", "2", "3", "4":
		if m.machine.State() == StateShowingPalette {
			return m.choose(int(msg.String()[0] - '1'))
		}
		return m, nil

	case "c":
		if m.machine.State() == StateShowingResult {
			if err := clipboard.WriteAll(m.machine.Result()); err != nil {
				m.notice = "Copy failed"
				return m, m.expireNotice()
			}
			m.notice = "Copied"
			return m, m.expireNotice()
		}
		return m, nil

	case "i":
		if m.machine.State() == StateShowingResult && m.inserter != nil {
			if err := m.inserter.InsertText(m.machine.Result()); err != nil {
				m.notice = "Insert failed"
			} else {
				m.notice = "Inserted"
				m.machine.Dismiss()
			}
			return m, m.expireNotice()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) choose(index int) (tea.Model, tea.Cmd) {
	version, ok := m.machine.Choose(index)
	if !ok {
		return m, nil
	}
	chosen := *m.machine.Chosen()
	pageCtx := m.machine.Context()
	br := m.bridge

	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		req := action.ExecuteActionRequest{
			Action:  chosen,
			Content: pageCtx.Content(),
			Context: *pageCtx,
		}
		raw, err := br.Call(ctx, action.MsgExecuteAction, req)
		if err != nil {
			return execMsg{version: version, failed: true, errText: "Action failed: " + err.Error()}
		}
		var resp action.ExecuteActionResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return execMsg{version: version, failed: true, errText: "Malformed response"}
		}
		if !resp.Success {
			return execMsg{version: version, failed: true, errText: resp.Error}
		}
		return execMsg{version: version, result: resp.Result}
	}
}

// noticeDuration is how long a transient notification stays visible.
const noticeDuration = 3 * time.Second

func (m Model) expireNotice() tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg { return noticeExpiredMsg{} })
}

// View renders the current surface.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.machine.State() {
	case StateIdle:
		body = m.styles.Hint.Render("Select text or alt-click an element in the attached page…")
	case StateLoading:
		body = fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Hint.Render("Finding actions…"))
	case StateShowingPalette:
		body = m.viewPalette()
	case StateExecuting:
		label := ""
		if a := m.machine.Chosen(); a != nil {
			label = a.Label
		}
		body = fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Hint.Render("Running "+label+"…"))
	case StateShowingResult:
		body = m.viewResult()
	}

	if m.notice != "" {
		body += "\n" + m.styles.Notice.Render(m.notice)
	}
	return m.styles.App.Render(body)
}

func (m Model) viewPalette() string {
	out := m.styles.Title.Render("Actions") + "\n"
	for i, a := range m.machine.Actions() {
		line := fmt.Sprintf("%d  %s %s", i+1, a.Icon, a.Label)
		if i == m.selected {
			out += m.styles.Selected.Render("▸ "+line) + "\n"
		} else {
			out += m.styles.Item.Render("  "+line) + "\n"
		}
	}
	out += m.styles.Hint.Render("enter/1-4 run · esc dismiss")
	return out
}

func (m Model) viewResult() string {
	result := m.machine.Result()
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(result); err == nil {
			result = rendered
		}
	}
	title := ""
	if a := m.machine.Chosen(); a != nil {
		title = a.Icon + " " + a.Label
	}
	out := m.styles.Title.Render(title) + "\n" + result + "\n"
	out += m.styles.Hint.Render("c copy · i insert · esc dismiss")
	return out
}
