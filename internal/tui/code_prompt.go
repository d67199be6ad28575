package tui

import (
	"fmt"
	"strings"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CodePromptModel asks for a one-time code.
// enter submits, ctrl+r asks for a new code, esc and ctrl+c cancel.
type CodePromptModel struct {
	input     textinput.Model
	method    authorizations.TwoFactorType
	result    authorizations.TwoFactorChallengeResult
	done      bool
	cancelled bool
	warning   string
}

// NewCodePrompt creates a focused prompt for a code delivered via method
func NewCodePrompt(method authorizations.TwoFactorType) CodePromptModel {
	ti := textinput.New()
	ti.Placeholder = "123456"
	ti.CharLimit = 12
	ti.Width = 12
	ti.Prompt = "> "
	ti.Focus()

	return CodePromptModel{
		input:  ti,
		method: method,
	}
}

func (m CodePromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m CodePromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			code := strings.TrimSpace(m.input.Value())
			if code == "" {
				m.warning = "enter a code, or press ctrl+r to have it sent again"
				return m, nil
			}
			m.result = authorizations.NewTwoFactorCode(code)
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.result = authorizations.RequestResendCode
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
		m.warning = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m CodePromptModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Two-factor authentication"))
	b.WriteString("\n\n")
	b.WriteString(instructions(m.method))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if m.warning != "" {
		b.WriteString(errorMessageStyle(m.warning))
		b.WriteString("\n\n")
	}
	b.WriteString(hintStyle.Render("enter submit • ctrl+r resend code • esc cancel"))
	return docStyle.Render(b.String())
}

// Result reports the answer and whether the prompt was cancelled
func (m CodePromptModel) Result() (authorizations.TwoFactorChallengeResult, bool) {
	return m.result, m.cancelled
}

func instructions(method authorizations.TwoFactorType) string {
	switch method {
	case authorizations.TwoFactorSMS:
		return "Enter the code sent to your phone by SMS."
	case authorizations.TwoFactorApp:
		return "Enter the code from your authenticator app."
	default:
		return fmt.Sprintf("Enter your two-factor code (delivery: %s).", method)
	}
}
