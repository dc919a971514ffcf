package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"

	"typeahead/internal/domain"
	"typeahead/internal/engine"
	"typeahead/internal/eventbus"
	"typeahead/internal/selection"
)

const clearButton = "[x]"

// Options configures NewModel
type Options struct {
	Config engine.Config
	// Deps.Probe and Deps.Sink are set by the model. A nil Deps.Scheduler
	// runs timers and lookups as Bubble Tea commands.
	Deps engine.Deps
	Sink *selection.URLSink
	// Clipboard defaults to the system clipboard
	Clipboard   Clipboard
	Restore     bool
	Placeholder string
}

// Model represents the UI state
type Model struct {
	engine    *engine.Engine
	sched     *teaScheduler
	sink      *selection.URLSink
	clipboard Clipboard
	log       logr.Logger

	input   textinput.Model
	help    help.Model
	keys    keyMap
	spinner spinner.Model
	styles  *Styles

	snap      domain.Snapshot
	restore   bool
	spinning  bool
	quitting  bool
	committed string
	pagerErr  error
	lastError *domain.ErrorEvent

	width  int
	height int
}

// NewModel creates a new UI model around a fresh engine
func NewModel(opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = opts.Placeholder
	if ti.Placeholder == "" {
		ti.Placeholder = "Search..."
	}
	ti.CharLimit = 256
	ti.Width = 40

	sink := opts.Sink
	if sink == nil {
		sink = selection.NewURLSink("", nil)
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = NewSystemClipboard(opts.Deps.Log)
	}

	m := &Model{
		sched:     &teaScheduler{},
		sink:      sink,
		clipboard: clip,
		log:       opts.Deps.Log.WithName("ui"),
		input:     ti,
		help:      help.New(),
		keys:      newKeyMap(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:    NewStyles(),
		restore:   opts.Restore,
	}
	m.input.PromptStyle = m.styles.Prompt

	deps := opts.Deps
	if deps.Scheduler == nil {
		deps.Scheduler = m.sched
	}
	deps.Sink = sink
	// Focus is owned by the text input; a blurred input means a list item
	// has it.
	deps.Probe = engine.FocusProbeFunc(func() bool {
		return !m.input.Focused() && m.snap.Focus == domain.FocusItem
	})
	m.engine = engine.New(opts.Config, deps)
	m.snap = m.engine.Snapshot()
	return m
}

// Committed returns the redirect URL chosen by the user, if any
func (m *Model) Committed() (string, bool) {
	return m.committed, m.committed != ""
}

// InstanceID identifies the engine behind this model
func (m *Model) InstanceID() string {
	return m.engine.InstanceID()
}

// Close cancels pending timers and lookups
func (m *Model) Close() {
	m.engine.Stop()
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.input.Focus()}
	if m.restore {
		cmds = append(cmds, m.apply(m.engine.Restore()))
	}
	cmds = append(cmds, m.sched.flush())
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if w := msg.Width - 12; w > 10 {
			m.input.Width = w
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && m.onClearButton(msg.X, msg.Y) {
			cmds = append(cmds, m.apply(m.engine.Clear()))
		}

	case scheduledMsg:
		if msg.msg != nil {
			snap, _ := m.engine.Handle(msg.msg)
			cmds = append(cmds, m.apply(snap))
		}

	case spinner.TickMsg:
		if m.snap.Status.IsLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			m.spinning = false
		}

	case EventMsg:
		m.handleEvent(msg.Event)

	case helpPagerMsg:
		m.pagerErr = msg.err
		if msg.err != nil {
			m.log.Error(msg.err, "help pager failed")
		}

	default:
		if m.input.Focused() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.sched.flush())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		return showHelpPager(renderHelpContent(m.keys))
	case key.Matches(msg, m.keys.Up):
		return m.apply(m.engine.HandleKey(domain.KeyEvent{Key: domain.KeyArrowUp}))
	case key.Matches(msg, m.keys.Down):
		return m.apply(m.engine.HandleKey(domain.KeyEvent{Key: domain.KeyArrowDown}))
	case key.Matches(msg, m.keys.Commit):
		return m.commit()
	case key.Matches(msg, m.keys.Clear):
		return m.apply(m.engine.Clear())
	case key.Matches(msg, m.keys.Refresh):
		return m.apply(m.engine.Refresh())
	case key.Matches(msg, m.keys.Paste):
		return m.apply(m.engine.HandleQuery(domain.Paste(m.clipboard.Read())))
	}

	// Bracketed paste from the terminal
	if msg.Paste {
		text := string(msg.Runes)
		return m.apply(m.engine.HandleQuery(domain.Paste(&text)))
	}

	// Any other key first pulls focus back from the list, then edits
	name := keyName(msg)
	cmds := []tea.Cmd{m.apply(m.engine.HandleKey(domain.KeyEvent{Key: name}))}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	if editsInput(msg) || m.input.Value() != before {
		cmds = append(cmds, m.apply(m.engine.HandleQuery(domain.Keystroke(name, m.input.Value()))))
	}
	return tea.Batch(cmds...)
}

// handleEvent reacts to domain events forwarded from the bus
func (m *Model) handleEvent(ev eventbus.DomainEvent) {
	switch e := ev.(type) {
	case domain.ErrorEvent:
		m.lastError = &e
	case domain.QueryDispatchedEvent:
		m.lastError = nil
	}
}

func (m *Model) commit() tea.Cmd {
	before, _ := m.sink.Last()
	cmd := m.apply(m.engine.HandleKey(domain.KeyEvent{Key: domain.KeyEnter}))
	if url, ok := m.sink.Last(); ok && url != before {
		m.committed = url
		m.quitting = true
		return tea.Batch(cmd, tea.Quit)
	}
	return cmd
}

// apply copies a snapshot into the widgets
func (m *Model) apply(s domain.Snapshot) tea.Cmd {
	m.snap = s

	if m.input.Value() != s.InputValue {
		m.input.SetValue(s.InputValue)
		m.input.CursorEnd()
	}

	var cmds []tea.Cmd
	if s.Focus == domain.FocusItem {
		m.input.Blur()
	} else if !m.input.Focused() {
		cmds = append(cmds, m.input.Focus())
	}

	if s.Status.IsLoading() && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// onClearButton reports whether a click at x, y hits the clear button
func (m *Model) onClearButton(x, y int) bool {
	top, left := m.styles.Main.GetPaddingTop(), m.styles.Main.GetPaddingLeft()
	row := top + lipgloss.Height(m.styles.Title.Render(title))
	start := left + lipgloss.Width(m.input.View()) + 1
	return y == row && x >= start && x < start+len(clearButton)
}

const title = "Typeahead"

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString(" ")
	b.WriteString(m.styles.ClearButton.Render(clearButton))
	b.WriteString("\n")

	if line := m.statusLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	for i, result := range m.snap.Results {
		if i == m.snap.Index {
			b.WriteString(m.styles.ItemSelected.Render("> " + result))
		} else {
			b.WriteString(m.styles.Item.Render(result))
		}
		b.WriteString("\n")
	}

	// lookup failures already show in the status line
	if m.lastError != nil && !m.snap.Status.IsError() {
		b.WriteString(m.styles.StatusError.Render(errorText(*m.lastError)))
		b.WriteString("\n")
	}

	if m.pagerErr != nil {
		b.WriteString(m.styles.StatusError.Render(fmt.Sprintf("help unavailable: %v", m.pagerErr)))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	return m.styles.Main.Render(b.String())
}

func (m *Model) statusLine() string {
	s := m.snap
	switch {
	case s.Status.IsLoading():
		return m.styles.StatusLoading.Render(m.spinner.View() + " searching " + s.Query)
	case s.Status.IsError():
		return m.styles.StatusError.Render(fmt.Sprintf("search failed: %v", s.Status.Err))
	case s.NoResults:
		return m.styles.StatusEmpty.Render("no results for " + s.Query)
	case s.Status.IsResolved() && len(s.Results) == 1:
		return m.styles.StatusSuccess.Render("1 result")
	case s.Status.IsResolved():
		return m.styles.StatusSuccess.Render(fmt.Sprintf("%d results", len(s.Results)))
	default:
		return ""
	}
}

func errorText(e domain.ErrorEvent) string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// keyName maps Bubble Tea key names onto the engine's key vocabulary
func keyName(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		return domain.KeyBackspace
	case tea.KeyDelete:
		return domain.KeyDelete
	case tea.KeyRunes, tea.KeySpace:
		return string(msg.Runes)
	default:
		return msg.String()
	}
}

func editsInput(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace, tea.KeyBackspace, tea.KeyDelete:
		return true
	default:
		return false
	}
}
