package main

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avelez/sleuth/pkg/engine"
)

// appState represents the chat state machine.
type appState int

const (
	stateIdle appState = iota
	stateProcessing
)

// appModel is the root bubbletea model for the chat command.
type appModel struct {
	ctx          context.Context
	sess         *engine.Session
	eng          *engine.Engine
	program      *tea.Program
	inputBox     inputModel
	scrollback   strings.Builder
	activeTools  []string
	state        appState
	cancelBridge context.CancelFunc
	cancelSend   context.CancelFunc // cancels the current Send when Escape is pressed
	spinnerFrame int
	thinking     string
	sendStart    time.Time
	width        int
	height       int
}

func newAppModel(ctx context.Context, sess *engine.Session, eng *engine.Engine) *appModel {
	m := &appModel{
		ctx:      ctx,
		sess:     sess,
		eng:      eng,
		inputBox: newInput(),
		state:    stateIdle,
	}

	if banner := toolsBanner(eng.ToolNames()); banner != "" {
		m.scrollback.WriteString(banner + "\n")
	}

	return m
}

// toolsBanner is the startup scrollback line naming the connected tools.
// Empty when no MCP tools are configured.
func toolsBanner(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return dimStyle.Render("Available tools: " + strings.Join(names, ", "))
}

func (m *appModel) Init() tea.Cmd {
	return nil
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		initMarkdownRenderer(m.width - 4)
		m.inputBox.setWidth(m.width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case programReadyMsg:
		m.program = msg.program
		m.cancelBridge = startBridge(m.ctx, msg.program, m.eng.Events())
		return m, nil

	case inputSubmitMsg:
		return m.handleSubmit(msg)

	case toolCallMsg:
		m.activeTools = append(m.activeTools, msg.tool)
		line := dimStyle.Render(treeCorner) + toolNameStyle.Render(formatToolCall(msg.tool, msg.args))
		m.scrollback.WriteString(line + "\n")
		return m, nil

	case toolDoneMsg:
		for i, t := range m.activeTools {
			if t == msg.tool {
				m.activeTools = append(m.activeTools[:i], m.activeTools[i+1:]...)
				break
			}
		}
		return m, nil

	case agentErrorMsg:
		m.scrollback.WriteString(errorBlockStyle.Render(toolErrorStyle.Render("error: "+msg.detail)) + "\n")
		return m, nil

	case sendCompleteMsg:
		return m.handleSendComplete(msg)

	case tickMsg:
		if m.state == stateProcessing {
			m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
			return m, tickCmd()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputBox, cmd = m.inputBox.Update(msg)
	return m, cmd
}

func (m *appModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var parts []string

	if s := m.scrollback.String(); s != "" {
		parts = append(parts, strings.TrimRight(s, "\n"))
	}

	if m.state == stateProcessing {
		frame := spinnerStyle.Render(spinnerFrames[m.spinnerFrame])
		elapsed := dimStyle.Render(fmtDuration(time.Since(m.sendStart)))
		parts = append(parts, frame+" "+dimStyle.Render(m.thinking)+" "+elapsed)
	}

	parts = append(parts, m.inputBox.View())

	return strings.Join(parts, "\n")
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, m.quit()

	case tea.KeyEsc:
		if m.state == stateProcessing && m.cancelSend != nil {
			m.cancelSend()
			m.cancelSend = nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputBox, cmd = m.inputBox.Update(msg)
	return m, cmd
}

func (m *appModel) handleSubmit(msg inputSubmitMsg) (tea.Model, tea.Cmd) {
	text := msg.text

	if text == "exit" || text == "quit" {
		return m, m.quit()
	}

	if m.state == stateProcessing {
		// Drop input while the agent is busy; the session is single-flight.
		return m, nil
	}

	m.scrollback.WriteString(renderUserMessage(text) + "\n")

	m.state = stateProcessing
	m.thinking = randomThinkingMessage()
	m.sendStart = time.Now()

	sendCtx, cancelSend := context.WithCancel(m.ctx)
	m.cancelSend = cancelSend

	sess := m.sess
	start := m.sendStart
	sendCmd := func() tea.Msg {
		reply, err := sess.Send(sendCtx, text)
		return sendCompleteMsg{reply: reply, err: err, duration: time.Since(start)}
	}

	return m, tea.Batch(sendCmd, tickCmd())
}

func (m *appModel) handleSendComplete(msg sendCompleteMsg) (tea.Model, tea.Cmd) {
	m.state = stateIdle
	m.cancelSend = nil
	m.activeTools = nil

	if msg.err != nil {
		if m.ctx.Err() == nil {
			m.scrollback.WriteString(errorBlockStyle.Render(toolErrorStyle.Render("error: "+msg.err.Error())) + "\n")
		}
		return m, nil
	}

	prefix := answerPrefixStyle.Render(m.sess.AgentName() + " > ")
	body := renderMarkdown(msg.reply.Text())
	footer := dimStyle.Render(treeCorner + fmtDuration(msg.duration))
	m.scrollback.WriteString(answerBlockStyle.Render(prefix) + "\n" + body + "\n" + footer + "\n")

	return m, nil
}

func (m *appModel) quit() tea.Cmd {
	if m.cancelBridge != nil {
		m.cancelBridge()
	}
	return tea.Quit
}

// renderUserMessage formats a user message for the terminal scrollback,
// indenting continuation lines to align with the first line.
func renderUserMessage(text string) string {
	prefix := userPrefixStyle.Render("You > ")
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return userBlockStyle.Render(prefix + text)
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(lines[0])
	for _, line := range lines[1:] {
		sb.WriteString("\n  ")
		sb.WriteString(line)
	}
	return userBlockStyle.Render(sb.String())
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
