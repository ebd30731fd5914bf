// Package tui is a terminal chat client for a session.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/present"
	sessionuc "github.com/Momo3972/chatbot-rag-ia-gen/internal/usecase/session"
)

const helpText = "Commands: /pdf <path>  /url <url>  /help  /quit. Anything else is a question."

// Session is the TUI-facing subset of the session service.
type Session interface {
	LoadFromPDF(ctx context.Context, path string) (sessionuc.LoadReport, error)
	LoadFromURL(ctx context.Context, url string) (sessionuc.LoadReport, error)
	Ask(ctx context.Context, query string) (string, error)
}

type role int

const (
	roleUser role = iota
	roleBot
	roleSystem
)

type entry struct {
	role role
	text string
}

// statusMsg carries the rendered result of a load.
type statusMsg struct{ text string }

// answerMsg carries the rendered result of an ask.
type answerMsg struct{ text string }

// Model is the Bubble Tea model for the chat client.
type Model struct {
	ctx        context.Context
	session    Session
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	transcript []entry
	busy       bool
	ready      bool
}

// New creates a chat model. ctx bounds every load and ask it starts.
func New(ctx context.Context, session Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or /pdf <path>, /url <url>"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:        ctx,
		session:    session,
		input:      ti,
		viewport:   viewport.New(0, 0),
		spinner:    sp,
		transcript: []entry{{role: roleSystem, text: helpText}},
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input box, input line
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil

	case statusMsg:
		m.busy = false
		m.append(roleSystem, msg.text)
		return m, nil

	case answerMsg:
		m.busy = false
		m.append(roleBot, msg.text)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.Type {
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit dispatches the current input line.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" || m.busy {
		return m, nil
	}
	m.input.Reset()

	cmd, arg := parseCommand(line)
	switch cmd {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/help":
		m.append(roleSystem, helpText)
		return m, nil
	case "/pdf":
		m.append(roleUser, line)
		return m.start(m.loadPDF(arg))
	case "/url":
		m.append(roleUser, line)
		return m.start(m.loadURL(arg))
	case "":
		m.append(roleUser, line)
		return m.start(m.ask(line))
	default:
		m.append(roleSystem, "Unknown command "+cmd+". "+helpText)
		return m, nil
	}
}

func (m Model) start(work tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, tea.Batch(work, m.spinner.Tick)
}

func (m Model) loadPDF(path string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		if _, err := session.LoadFromPDF(ctx, path); err != nil {
			return statusMsg{text: present.LoadFailed(err)}
		}
		return statusMsg{text: present.PDFLoaded}
	}
}

func (m Model) loadURL(url string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		if _, err := session.LoadFromURL(ctx, url); err != nil {
			return statusMsg{text: present.LoadFailed(err)}
		}
		return statusMsg{text: present.URLLoaded}
	}
}

func (m Model) ask(query string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		answer, err := session.Ask(ctx, query)
		return answerMsg{text: present.Answer(answer, err)}
	}
}

// parseCommand splits "/cmd arg" lines. Plain questions return an empty command.
func parseCommand(line string) (cmd, arg string) {
	if !strings.HasPrefix(line, "/") {
		return "", line
	}
	cmd, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func (m *Model) append(r role, text string) {
	m.transcript = append(m.transcript, entry{role: r, text: text})
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the header, transcript, status line and input box.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("RAG Chatbot: ask your documents")
	status := statusStyle.Render("PgUp/PgDn scroll, Ctrl+C quit")
	if m.busy {
		status = m.spinner.View() + " working..."
	}
	return header + "\n" +
		transcriptStyle.Render(m.viewport.View()) + "\n" +
		status + "\n" +
		inputStyle.Render(m.input.View())
}

func (m Model) renderTranscript() string {
	width := max(10, m.viewport.Width-2)
	var b strings.Builder
	for i, e := range m.transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.role {
		case roleUser:
			b.WriteString(userStyle.Width(width).Render("You: " + e.text))
		case roleBot:
			b.WriteString(botStyle.Width(width).Render("Bot: " + e.text))
		default:
			b.WriteString(systemStyle.Width(width).Render(e.text))
		}
	}
	return b.String()
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle        = lipgloss.NewStyle()
	systemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Italic(true)
)
