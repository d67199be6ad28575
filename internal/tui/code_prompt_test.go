package tui

import (
	"testing"

	"github.com/brizzai/tokenctl/internal/authorizations"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, m CodePromptModel, msgs ...tea.Msg) (CodePromptModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(CodePromptModel)
		require.True(t, ok)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestCodePrompt(t *testing.T) {
	tests := []struct {
		name          string
		msgs          []tea.Msg
		wantQuit      bool
		wantCancelled bool
		wantResend    bool
		wantCode      string
		wantWarning   bool
	}{
		{
			name:     "submit code",
			msgs:     []tea.Msg{runes("123456"), tea.KeyMsg{Type: tea.KeyEnter}},
			wantQuit: true,
			wantCode: "123456",
		},
		{
			name:     "code is trimmed",
			msgs:     []tea.Msg{runes(" 654321 "), tea.KeyMsg{Type: tea.KeyEnter}},
			wantQuit: true,
			wantCode: "654321",
		},
		{
			name:        "empty submit warns",
			msgs:        []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}},
			wantWarning: true,
		},
		{
			name:       "resend",
			msgs:       []tea.Msg{runes("12"), tea.KeyMsg{Type: tea.KeyCtrlR}},
			wantQuit:   true,
			wantResend: true,
		},
		{
			name:          "escape cancels",
			msgs:          []tea.Msg{tea.KeyMsg{Type: tea.KeyEsc}},
			wantQuit:      true,
			wantCancelled: true,
		},
		{
			name:          "ctrl+c cancels",
			msgs:          []tea.Msg{runes("1"), tea.KeyMsg{Type: tea.KeyCtrlC}},
			wantQuit:      true,
			wantCancelled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := send(t, NewCodePrompt(authorizations.TwoFactorSMS), tt.msgs...)

			assert.Equal(t, tt.wantQuit, isQuit(cmd))
			result, cancelled := m.Result()
			assert.Equal(t, tt.wantCancelled, cancelled)
			assert.Equal(t, tt.wantResend, result.ResendCodeRequested())
			assert.Equal(t, tt.wantCode, result.AuthenticationCode())
			assert.Equal(t, tt.wantWarning, m.warning != "")
		})
	}
}

func TestCodePrompt_View(t *testing.T) {
	assert.Contains(t, NewCodePrompt(authorizations.TwoFactorSMS).View(), "SMS")
	assert.Contains(t, NewCodePrompt(authorizations.TwoFactorApp).View(), "authenticator app")
	assert.Contains(t, NewCodePrompt(authorizations.TwoFactorUnknown).View(), "unknown")

	m, _ := send(t, NewCodePrompt(authorizations.TwoFactorApp), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.View(), "ctrl+r")

	m, _ = send(t, m, runes("1"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.View())
}
