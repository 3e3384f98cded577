// Package tui is the full-screen terminal interface for the task list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mytasks/internal/log"
	"mytasks/internal/output"
	"mytasks/internal/service"
	"mytasks/internal/storage"
	"mytasks/internal/task"
	"mytasks/internal/theme"
)

type mode int

const (
	modeList mode = iota
	modeNew
)

const (
	fieldTitle = iota
	fieldSummary
)

// reloadMsg is sent when the storage changed outside this process.
type reloadMsg struct{}

// Model is the Bubble Tea model for the task list.
type Model struct {
	ctx    context.Context
	svc    service.Service
	tasks  []task.Task
	theme  theme.Theme
	styles styles
	cursor int
	mode   mode

	title   textinput.Model
	summary textinput.Model
	field   int

	status  string
	isError bool
	width   int
}

// NewModel loads the current tasks and theme from svc.
func NewModel(ctx context.Context, svc service.Service) (Model, error) {
	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return Model{}, err
	}
	th, err := svc.Theme(ctx)
	if err != nil {
		return Model{}, err
	}

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 256
	title.Width = 40

	summary := textinput.New()
	summary.Placeholder = "Summary"
	summary.CharLimit = 1024
	summary.Width = 40

	return Model{
		ctx:     ctx,
		svc:     svc,
		tasks:   tasks,
		theme:   th,
		styles:  newStyles(th),
		title:   title,
		summary: summary,
		status:  "n new  d delete  t theme  q quit",
	}, nil
}

// Run starts the terminal UI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, svc service.Service) error {
	m, err := NewModel(ctx, svc)
	if err != nil {
		return err
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	err = svc.Watch(watchCtx, func() { program.Send(reloadMsg{}) })
	if err != nil && !errors.Is(err, storage.ErrWatchUnsupported) {
		log.Warn().Err(err).Msg("cannot watch storage, external changes will not be shown")
	}

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+j":
			return m.toggleTheme(), nil
		}
		if m.mode == modeNew {
			return m.updateDialog(msg)
		}
		return m.updateList(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.title.Width = max(msg.Width-20, 10)
		m.summary.Width = max(msg.Width-20, 10)
	case reloadMsg:
		return m.reload(), nil
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "n", "a":
		return m.openDialog()
	case "d", "delete", "x":
		return m.deleteSelected(), nil
	case "t":
		return m.toggleTheme(), nil
	case "r":
		return m.reload(), nil
	}
	return m, nil
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closeDialog()
		m.setStatus("Cancelled")
		return m, nil
	case "tab", "shift+tab", "up", "down":
		return m.switchField()
	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	if m.field == fieldTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.summary, cmd = m.summary.Update(msg)
	}
	return m, cmd
}

func (m Model) openDialog() (tea.Model, tea.Cmd) {
	m.mode = modeNew
	m.field = fieldTitle
	m.title.SetValue("")
	m.summary.SetValue("")
	m.summary.Blur()
	m.status = ""
	cmd := m.title.Focus()
	return m, cmd
}

func (m Model) closeDialog() Model {
	m.mode = modeList
	m.title.SetValue("")
	m.summary.SetValue("")
	m.title.Blur()
	m.summary.Blur()
	return m
}

func (m Model) switchField() (tea.Model, tea.Cmd) {
	if m.field == fieldTitle {
		m.field = fieldSummary
		m.title.Blur()
		cmd := m.summary.Focus()
		return m, cmd
	}
	m.field = fieldTitle
	m.summary.Blur()
	cmd := m.title.Focus()
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	title := m.title.Value()
	if strings.TrimSpace(title) == "" {
		m.setError("Title is required")
		return m, nil
	}
	if err := m.svc.CreateTask(m.ctx, title, m.summary.Value()); err != nil {
		m.setError(fmt.Sprintf("save failed: %v", err))
		return m, nil
	}
	m = m.refresh()
	m.cursor = max(len(m.tasks)-1, 0)
	m = m.closeDialog()
	m.setStatus("Task created")
	return m, nil
}

func (m Model) deleteSelected() Model {
	if len(m.tasks) == 0 {
		m.setStatus("Nothing to delete")
		return m
	}
	if err := m.svc.DeleteTask(m.ctx, m.cursor); err != nil {
		m.setError(fmt.Sprintf("delete failed: %v", err))
		return m
	}
	m = m.refresh()
	m.cursor = clampCursor(m.cursor, len(m.tasks))
	m.setStatus("Task deleted")
	return m
}

func (m Model) toggleTheme() Model {
	th, err := m.svc.ToggleTheme(m.ctx, "")
	if err != nil {
		m.setError(fmt.Sprintf("theme change failed: %v", err))
		return m
	}
	m.theme = th
	m.styles = newStyles(th)
	return m
}

func (m Model) reload() Model {
	if err := m.svc.Reload(m.ctx); err != nil {
		m.setError(fmt.Sprintf("reload failed: %v", err))
		return m
	}
	m = m.refresh()
	if th, err := m.svc.Theme(m.ctx); err == nil && th != m.theme {
		m.theme = th
		m.styles = newStyles(th)
	}
	m.cursor = clampCursor(m.cursor, len(m.tasks))
	return m
}

func (m Model) refresh() Model {
	tasks, err := m.svc.ListTasks(m.ctx)
	if err != nil {
		m.setError(fmt.Sprintf("list failed: %v", err))
		return m
	}
	m.tasks = tasks
	return m
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.isError = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.isError = true
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.header.Render("My Tasks"))
	b.WriteString("\n")

	if m.mode == modeNew {
		b.WriteString(m.renderDialog())
	} else {
		b.WriteString(m.renderCards())
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.isError {
			b.WriteString(m.styles.errStatus.Render(m.status))
		} else {
			b.WriteString(m.styles.status.Render(m.status))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderCards() string {
	if len(m.tasks) == 0 {
		return m.styles.muted.Render(output.EmptyMessage) + "\n"
	}

	var b strings.Builder
	for i, t := range m.tasks {
		style := m.styles.card
		if i == m.cursor {
			style = m.styles.selectedCard
		}
		summary := m.styles.summary.Render(output.Summary(t))
		if strings.TrimSpace(t.Summary) == "" {
			summary = m.styles.muted.Render(output.NoSummaryMessage)
		}
		body := m.styles.cardTitle.Render(output.NormalizeTitle(t.Title)) + "\n" + summary
		b.WriteString(style.Render(body))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDialog() string {
	var b strings.Builder
	b.WriteString(m.styles.label.Render("New Task"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.label.Render("Title *"))
	b.WriteString("\n")
	b.WriteString(m.title.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.label.Render("Summary"))
	b.WriteString("\n")
	b.WriteString(m.summary.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.muted.Render("[esc] Cancel   [enter] Create Task"))
	return m.styles.dialog.Render(b.String()) + "\n"
}

func clampCursor(cur, n int) int {
	if n <= 0 || cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
