// Package tui is the terminal front end of a coaching session: a chat pane,
// an input line and a side panel showing the structured document.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonathan/star-coach/internal/coach"
	"github.com/jonathan/star-coach/internal/conversation"
	"github.com/jonathan/star-coach/internal/types"
	"github.com/jonathan/star-coach/internal/workflow"
	"go.uber.org/zap"
)

const (
	headerHeight = 2
	statusHeight = 1
	inputHeight  = 3
	helpHeight   = 1

	minPanelWidth = 24
	maxPanelWidth = 44
)

// AdvanceFunc finishes the current document. It returns the hints for the
// next conversation, or done when there is nothing left to coach.
type AdvanceFunc[D any] func(doc D) (next types.CoachingContext, done bool, err error)

// Config configures a Model.
type Config[D any, U any] struct {
	Session *coach.Session[D, U]
	Title   string
	Panel   PanelFunc[D]
	// Advance is bound to Ctrl+N. Nil disables the key.
	Advance AdvanceFunc[D]
	Logger  *zap.Logger
}

type (
	changedMsg  struct{}
	sentMsg     struct{ err error }
	advancedMsg struct {
		next types.CoachingContext
		done bool
		err  error
	}
)

// Model is the bubbletea model of a coaching session. Session events only
// mark the view dirty; the view always reads the session's current state.
type Model[D any, U any] struct {
	cfg     Config[D, U]
	session *coach.Session[D, U]
	logger  *zap.Logger
	changes chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	styles   styles

	width      int
	height     int
	panelWidth int
	ready      bool
	status     string
	finished   bool
}

// New creates a model and subscribes it to the session's changes.
func New[D any, U any](cfg Config[D, U]) Model[D, U] {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "Type your answer (Enter to send)"
	ti.CharLimit = 4000
	ti.Prompt = "› "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	changes := make(chan struct{}, 1)
	cfg.Session.OnChange(func(coach.Event) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	return Model[D, U]{
		cfg:     cfg,
		session: cfg.Session,
		logger:  logger,
		changes: changes,
		ctx:     ctx,
		cancel:  cancel,
		input:   ti,
		spinner: sp,
		styles:  defaultStyles(),
	}
}

// Init implements tea.Model.
func (m Model[D, U]) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForChange())
}

// Finished reports whether the program ended because everything was coached.
func (m Model[D, U]) Finished() bool {
	return m.finished
}

func (m Model[D, U]) waitForChange() tea.Cmd {
	changes, ctx := m.changes, m.ctx
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model.
func (m Model[D, U]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.cancel()
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.session.Reset()
			m.status = "Started over."
			m.refresh()
			return m, nil
		case tea.KeyCtrlN:
			return m.advance()
		case tea.KeyEnter:
			return m.send()
		}

	case changedMsg:
		m.refresh()
		return m, m.waitForChange()

	case sentMsg:
		switch {
		case msg.err == nil, errors.Is(msg.err, coach.ErrSessionReset):
		case errors.Is(msg.err, coach.ErrTurnInFlight):
			m.status = "Wait for the coach to finish replying."
		default:
			m.logger.Debug("send failed", zap.Error(msg.err))
		}
		m.refresh()
		return m, nil

	case advancedMsg:
		if msg.err != nil {
			m.status = "Could not finish: " + msg.err.Error()
			return m, nil
		}
		if msg.done {
			m.finished = true
			m.cancel()
			return m, tea.Quit
		}
		m.session.ResetWith(msg.next)
		m.status = ""
		if msg.next.Competency != nil {
			m.status = "Next up: " + msg.next.Competency.Name
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var tiCmd, vpCmd tea.Cmd
	m.input, tiCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m Model[D, U]) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.busy() {
		m.status = "Wait for the coach to finish replying."
		return m, nil
	}
	m.input.Reset()
	m.status = ""

	session, ctx := m.session, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return sentMsg{err: session.Send(ctx, text)}
	})
}

func (m Model[D, U]) advance() (tea.Model, tea.Cmd) {
	if m.cfg.Advance == nil {
		return m, nil
	}
	if m.busy() {
		m.status = "Wait for the coach to finish replying."
		return m, nil
	}
	m.status = "Saving answer..."

	session, advance := m.session, m.cfg.Advance
	return m, func() tea.Msg {
		session.Wait()
		next, done, err := advance(session.Document())
		return advancedMsg{next: next, done: done, err: err}
	}
}

func (m Model[D, U]) busy() bool {
	return m.session.State() != coach.StateIdle
}

func (m *Model[D, U]) resize(width, height int) {
	m.width, m.height = max(width, 0), max(height, 0)
	m.panelWidth = min(max(m.width/3, minPanelWidth), maxPanelWidth)
	chatWidth := max(m.width-m.panelWidth-1, 10)
	vpHeight := max(m.height-headerHeight-statusHeight-inputHeight-helpHeight, 3)

	if !m.ready {
		m.viewport = viewport.New(chatWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = max(chatWidth+m.panelWidth-6, 10)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(chatWidth-4, 10)),
	)
	if err != nil {
		m.logger.Debug("markdown renderer unavailable", zap.Error(err))
		renderer = nil
	}
	m.renderer = renderer
	m.refresh()
}

func (m *Model[D, U]) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model[D, U]) renderHistory() string {
	var sb strings.Builder
	for _, msg := range m.session.Messages() {
		sb.WriteString(m.renderMessage(msg))
	}
	return sb.String()
}

func (m Model[D, U]) renderMessage(msg conversation.Message) string {
	if msg.Role == types.RoleUser {
		return m.styles.user.Render("You") + "\n" + msg.Content + "\n\n"
	}

	content := msg.Content
	if msg.IsStreaming {
		// partial markdown renders badly, so stream plain text
		return m.styles.assistant.Render("Coach") + "\n" + content + "▍\n\n"
	}
	return m.styles.assistant.Render("Coach") + "\n" + m.renderMarkdown(content) + "\n"
}

// renderMarkdown falls back to plain text when glamour fails or panics.
func (m Model[D, U]) renderMarkdown(content string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = content
		}
	}()
	if m.renderer == nil || content == "" {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}

// stepLabel reports the position of section in order. Unknown sections
// count as the first step.
func stepLabel(order workflow.Order, section workflow.Section) string {
	return fmt.Sprintf("step %d/%d · %s", max(order.Index(section)+1, 1), len(order), section)
}

// View implements tea.Model.
func (m Model[D, U]) View() string {
	if !m.ready {
		return "Initializing..."
	}

	section := m.session.Section()
	header := m.styles.title.Render(m.cfg.Title) + "  " +
		m.styles.muted.Render(stepLabel(m.session.Workflow().Order, section))

	var panel string
	if m.cfg.Panel != nil {
		panel = m.styles.panel.
			Width(m.panelWidth - 2).
			Height(m.viewport.Height - 2).
			Render(m.cfg.Panel(m.session.Document(), section))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), " ", panel)

	var status string
	switch {
	case m.busy():
		status = m.spinner.View() + " " + m.styles.muted.Render("Coach is typing...")
	case m.session.Err() != "":
		status = m.styles.err.Render(m.session.Err())
	default:
		status = m.styles.muted.Render(m.status)
	}

	help := "Enter send · Ctrl+R start over · Ctrl+C quit"
	if m.cfg.Advance != nil {
		help = "Enter send · Ctrl+N save & next · Ctrl+R start over · Ctrl+C quit"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		status,
		m.styles.input.Render(m.input.View()),
		m.styles.muted.Render(help),
	)
}

// Run starts the program in the alternate screen and returns the final model.
func Run[D any, U any](ctx context.Context, m Model[D, U], opts ...tea.ProgramOption) (Model[D, U], error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	m.cancel()
	if err != nil {
		return m, fmt.Errorf("terminal UI failed: %w", err)
	}
	out, ok := final.(Model[D, U])
	if !ok {
		return m, nil
	}
	return out, nil
}
