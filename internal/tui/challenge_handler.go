package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/brizzai/tokenctl/internal/authorizations"
	"github.com/brizzai/tokenctl/internal/logger"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var ErrPromptCancelled = errors.New("two-factor prompt cancelled")

// ChallengeHandler prompts on a terminal for each two-factor challenge
type ChallengeHandler struct {
	in  io.Reader
	out io.Writer
}

// NewChallengeHandler creates a ChallengeHandler reading keys from in and
// drawing on out
func NewChallengeHandler(in io.Reader, out io.Writer) *ChallengeHandler {
	return &ChallengeHandler{in: in, out: out}
}

func (h *ChallengeHandler) HandleTwoFactorChallenge(ctx context.Context, method authorizations.TwoFactorType) (authorizations.TwoFactorChallengeResult, error) {
	logger.Debug("prompting for two-factor code", zap.String("method", string(method)))

	p := tea.NewProgram(
		NewCodePrompt(method),
		tea.WithContext(ctx),
		tea.WithInput(h.in),
		tea.WithOutput(h.out),
	)

	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return authorizations.TwoFactorChallengeResult{}, ctxErr
		}
		return authorizations.TwoFactorChallengeResult{}, fmt.Errorf("two-factor prompt failed: %w", err)
	}

	m, ok := final.(CodePromptModel)
	if !ok {
		return authorizations.TwoFactorChallengeResult{}, fmt.Errorf("unexpected prompt model %T", final)
	}
	result, cancelled := m.Result()
	if cancelled {
		return authorizations.TwoFactorChallengeResult{}, ErrPromptCancelled
	}
	return result, nil
}
