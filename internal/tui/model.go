package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BorisDmv/my-todo-api/internal/client"
	"github.com/BorisDmv/my-todo-api/internal/models"
)

const (
	msgLoadFailed   = "Could not load todos. Make sure the backend server is running."
	msgEmptyTitle   = "Todo title cannot be empty."
	msgAddFailed    = "Could not add the todo."
	msgUpdateFailed = "Could not update the todo."
	msgDeleteFailed = "Could not delete the todo."
)

// API is the subset of the HTTP client the view talks to.
type API interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, title string) (models.Task, error)
	SetCompleted(ctx context.Context, id int64, completed bool) (models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

type taskCreatedMsg struct {
	task models.Task
	err  error
}

type taskUpdatedMsg struct {
	task models.Task
	err  error
}

type taskDeletedMsg struct {
	id  int64
	err error
}

// Model is the single todo view. The todos slice mirrors the server and
// only changes after the server confirms a mutation.
type Model struct {
	api API
	log *slog.Logger

	todos   []models.Task
	input   textinput.Model
	cursor  int
	loading bool
	err     string

	listFocused bool
	keys        keyMap
	help        help.Model
}

func New(api API, log *slog.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Add a new todo..."
	ti.CharLimit = 200
	ti.Focus()

	return Model{
		api:     api,
		log:     log,
		todos:   []models.Task{},
		input:   ti,
		loading: true,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchTasks())
}

func (m Model) fetchTasks() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.api.ListTasks(context.Background())
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m Model) createTask(title string) tea.Cmd {
	return func() tea.Msg {
		task, err := m.api.CreateTask(context.Background(), title)
		return taskCreatedMsg{task: task, err: err}
	}
}

func (m Model) setCompleted(id int64, completed bool) tea.Cmd {
	return func() tea.Msg {
		task, err := m.api.SetCompleted(context.Background(), id, completed)
		return taskUpdatedMsg{task: task, err: err}
	}
}

func (m Model) deleteTask(id int64) tea.Cmd {
	return func() tea.Msg {
		return taskDeletedMsg{id: id, err: m.api.DeleteTask(context.Background(), id)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.log.Error("load todos failed", "error", msg.err)
			m.err = msgLoadFailed
			return m, nil
		}
		m.todos = append([]models.Task{}, msg.tasks...)
		m.err = ""
		m.clampCursor()
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil {
			m.log.Error("add todo failed", "error", msg.err)
			m.err = client.Message(msg.err, msgAddFailed)
			return m, nil
		}
		m.todos = append([]models.Task{msg.task}, m.todos...)
		m.input.SetValue("")
		return m, nil

	case taskUpdatedMsg:
		if msg.err != nil {
			m.log.Error("update todo failed", "error", msg.err)
			m.err = client.Message(msg.err, msgUpdateFailed)
			return m, nil
		}
		todos := make([]models.Task, len(m.todos))
		for i, t := range m.todos {
			if t.ID == msg.task.ID {
				t = msg.task
			}
			todos[i] = t
		}
		m.todos = todos
		return m, nil

	case taskDeletedMsg:
		if msg.err != nil {
			m.log.Error("delete todo failed", "id", msg.id, "error", msg.err)
			m.err = client.Message(msg.err, msgDeleteFailed)
			return m, nil
		}
		todos := make([]models.Task, 0, len(m.todos))
		for _, t := range m.todos {
			if t.ID != msg.id {
				todos = append(todos, t)
			}
		}
		m.todos = todos
		m.clampCursor()
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if !m.listFocused {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case m.loading:
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		m.listFocused = !m.listFocused
		if m.listFocused {
			m.input.Blur()
			return m, nil
		}
		return m, m.input.Focus()
	}

	if !m.listFocused {
		if key.Matches(msg, m.keys.Submit) {
			return m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if t, ok := m.selected(); ok {
			m.err = ""
			return m, m.setCompleted(t.ID, !t.Completed)
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.err = ""
			return m, m.deleteTask(t.ID)
		}
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.input.Value())
	if title == "" {
		m.err = msgEmptyTitle
		return m, nil
	}
	m.err = ""
	return m, m.createTask(title)
}

func (m Model) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.todos) {
		return models.Task{}, false
	}
	return m.todos[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.todos) {
		m.cursor = len(m.todos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	if m.loading {
		return panel.Render(mutedStyle.Render("Loading todos..."))
	}

	var b strings.Builder
	done, pending := stats(m.todos)
	fmt.Fprintf(&b, "%s   %s %d  %s %d  %s %d\n",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(m.todos),
	)
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err) + "\n")
	}
	b.WriteString(inputBox.Render(m.input.View()) + "\n")

	if len(m.todos) == 0 && m.err == "" {
		b.WriteString(mutedStyle.Render("No todos yet.") + "\n")
	}
	for i, t := range m.todos {
		box, text := mutedStyle.Render(boxUnchecked), t.Title
		if t.Completed {
			box, text = successStyle.Render(boxChecked), doneStyle.Render(t.Title)
		}
		prefix := "  "
		if m.listFocused && i == m.cursor {
			prefix = selectedStyle.Render("> ")
		}
		b.WriteString(prefix + box + " " + text + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return panel.Render(b.String())
}

func stats(todos []models.Task) (done, pending int) {
	for _, t := range todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
