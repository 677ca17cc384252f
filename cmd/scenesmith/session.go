// This file implements the interactive refinement session using bubbletea.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"scenesmith/cmd/scenesmith/ui"
	"scenesmith/internal/orchestrator"
	"scenesmith/internal/scene"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Interactive scene refinement session",
	Long: `Session opens an interactive prompt. Each generated scene becomes the
context for the next prompt, so "make the circle blue" refines the
previous scene instead of starting over. Use /new to start a fresh
scene, Esc or Ctrl+C to exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := orchestrator.NewFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize pipeline: %w", err)
		}
		defer orch.Close()
		return runSession(orch)
	},
}

// sessionModel is the model for the interactive refinement session
type sessionModel struct {
	// UI Components
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    ui.Styles

	// State
	history   []sessionTurn
	prior     *scene.Specification
	isLoading bool
	err       error
	width     int
	height    int
	ready     bool
	turnCount int

	// Backend
	orch *orchestrator.Orchestrator
}

type sessionTurn struct {
	role    string // "user" or "scenesmith"
	content string
	time    time.Time
}

// Messages for tea updates
type (
	resultMsg struct{ out *orchestrator.Output }
	errorMsg  error
)

// initSession initializes the interactive session model
func initSession(orch *orchestrator.Orchestrator) sessionModel {
	styles := ui.DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Describe a scene... (Enter to generate, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	return sessionModel{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		history:   []sessionTurn{},
		orch:      orch,
	}
}

func (m sessionModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

func (m sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if !m.isLoading {
				return m.handleSubmit()
			}
		}

		if !m.isLoading {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		footerHeight := 3
		inputHeight := 3

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight-inputHeight)
			m.viewport.SetContent(m.renderHistory())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		}

		m.textinput.Width = msg.Width - 4

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case resultMsg:
		m.isLoading = false
		m.turnCount++
		m.prior = msg.out.Spec
		m.history = append(m.history, sessionTurn{
			role:    "scenesmith",
			content: m.renderResult(msg.out),
			time:    time.Now(),
		})
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()

	case errorMsg:
		m.isLoading = false
		m.err = msg
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m sessionModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	// Add user message to history
	m.history = append(m.history, sessionTurn{
		role:    "user",
		content: input,
		time:    time.Now(),
	})

	m.textinput.Reset()
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	m.isLoading = true
	m.err = nil

	// Generate in background
	return m, tea.Batch(
		m.spinner.Tick,
		m.generate(input),
	)
}

func (m sessionModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.Fields(input)[0] {
	case "/quit", "/exit", "/q":
		return m, tea.Quit

	case "/clear":
		m.history = []sessionTurn{}
		m.prior = nil
		m.turnCount = 0
		m.err = nil
		m.viewport.SetContent("")
		m.textinput.Reset()
		return m, nil

	case "/new":
		m.prior = nil
		m.history = append(m.history, sessionTurn{
			role:    "scenesmith",
			content: m.styles.Info.Render("Starting a fresh scene. The next prompt will not refine the previous one."),
			time:    time.Now(),
		})

	case "/help":
		help := `Commands:
  /new    start a fresh scene (drop the refinement context)
  /clear  clear the transcript and refinement context
  /quit   exit the session

Enter sends the prompt. Each generated scene becomes the context for
the next prompt, so "make the circle blue" refines the last scene.`
		m.history = append(m.history, sessionTurn{
			role:    "scenesmith",
			content: help,
			time:    time.Now(),
		})

	default:
		m.history = append(m.history, sessionTurn{
			role:    "scenesmith",
			content: fmt.Sprintf("Unknown command: %s. Type /help for available commands.", input),
			time:    time.Now(),
		})
	}

	m.textinput.Reset()
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	return m, nil
}

// generate runs one orchestration in the background. The prior
// specification is captured at submit time so refinement applies to the
// scene the user was looking at.
func (m sessionModel) generate(prompt string) tea.Cmd {
	prior := m.prior
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		out, err := m.orch.Run(ctx, orchestrator.Input{Prompt: prompt, Prior: prior, UserID: userID})
		if err != nil {
			return errorMsg(err)
		}
		return resultMsg{out: out}
	}
}

func (m sessionModel) renderResult(out *orchestrator.Output) string {
	var sb strings.Builder
	sb.WriteString(m.styles.Program.Render(out.Program))
	sb.WriteString("\n")
	sb.WriteString(ui.SummaryLine(m.styles, out.Backend, out.FallbackUsed, out.Quality, out.RecordID))
	return sb.String()
}

func (m sessionModel) renderHistory() string {
	var sb strings.Builder

	for _, turn := range m.history {
		if turn.role == "user" {
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(turn.content))
			sb.WriteString("\n\n")
		} else {
			assistantStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Accent).
				MarginTop(1)
			sb.WriteString(assistantStyle.Render("scenesmith") + "\n")
			sb.WriteString(turn.content)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func (m sessionModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()

	chatView := m.styles.Content.Render(m.viewport.View())

	if m.isLoading {
		chatView += "\n" + m.styles.Spinner.Render(m.spinner.View()) + " Generating..."
	}

	if m.err != nil {
		chatView += "\n" + m.styles.Error.Render("Error: "+m.err.Error())
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m sessionModel) renderHeader() string {
	title := m.styles.Header.Render(" scenesmith ")

	var status string
	if m.isLoading {
		status = m.styles.Warning.Render("● Generating")
	} else {
		status = m.styles.Success.Render("● Ready")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		"  ",
		status,
	)

	var mode string
	if m.prior != nil {
		mode = m.styles.Muted.Render(fmt.Sprintf(" refining %q (turn %d)", m.prior.Name, m.turnCount))
	} else {
		mode = m.styles.Muted.Render(" new scene")
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		mode,
		m.styles.RenderDivider(m.width),
	)
}

func (m sessionModel) renderFooter() string {
	help := m.styles.Muted.Render("Enter: generate • /new: fresh scene • /help: commands • Ctrl+C: exit")
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(help)
}

// runSession starts the interactive session interface
func runSession(orch *orchestrator.Orchestrator) error {
	p := tea.NewProgram(
		initSession(orch),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
