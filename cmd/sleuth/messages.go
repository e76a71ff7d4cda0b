package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avelez/sleuth/pkg/chats/message"
)

// inputSubmitMsg carries the text the user submitted from the input box.
type inputSubmitMsg struct {
	text string
}

// sendCompleteMsg is returned by the tea.Cmd that calls sess.Send.
type sendCompleteMsg struct {
	reply    message.Message
	err      error
	duration time.Duration
}

// toolCallMsg delivers a tool_call_start event from the bridge goroutine.
type toolCallMsg struct {
	agent string
	tool  string
	args  string
}

// toolDoneMsg delivers a tool_call_end event from the bridge goroutine.
type toolDoneMsg struct {
	tool string
}

// agentErrorMsg delivers an error event from the bridge goroutine.
type agentErrorMsg struct {
	agent  string
	detail string
}

// programReadyMsg passes the *tea.Program to the model so it can start the
// event bridge goroutine.
type programReadyMsg struct {
	program *tea.Program
}

// tickMsg drives the spinner animation.
type tickMsg time.Time
