package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/reward"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// REWARD LEDGER OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// SubmitQuizCompletion reports a quiz result to the reward ledger. The
// ledger judges pass/fail and the awarded points independently of the
// client's local estimate; its outcome is authoritative.
func (c *Client) SubmitQuizCompletion(ctx context.Context, sessionID session.ID, score, totalQuestions int) (reward.Outcome, error) {
	payload := QuizCompletionRequestDTO{
		SessionID:      sessionID.String(),
		Score:          score,
		TotalQuestions: totalQuestions,
	}

	var response APIResponse[QuizCompletionResultDTO]
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/rewards/quiz-completions", payload, &response); err != nil {
		return reward.Outcome{}, fmt.Errorf("submit quiz completion: %w", err)
	}
	if !response.Success {
		return reward.Outcome{}, fmt.Errorf("api error: %s", response.Error)
	}

	return c.mapper.OutcomeFromDTO(&response.Data), nil
}
