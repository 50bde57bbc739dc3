package platform

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
	"github.com/peerlink-hub/peerlink-sessions/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT QUESTION GENERATOR
// ══════════════════════════════════════════════════════════════════════════════

// GenerateQuestionsFromPDF uploads a PDF and returns the generated question
// set (at most session.MaxQuizQuestions items). Only PDFs are accepted; the
// check happens client-side before any upload.
//
// The returned set has gone through domain construction: duplicate option
// strings removed, answer guaranteed to be among the options.
func (c *Client) GenerateQuestionsFromPDF(ctx context.Context, filename string, content io.Reader) ([]session.QuizQuestion, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, shared.ErrNotPDF
	}

	var response APIResponse[[]QuizQuestionDTO]
	err := c.doMultipart(ctx, "/api/v1/documents/generate-questions", func(mw *multipart.Writer) error {
		part, err := mw.CreateFormFile("document", filename)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, content)
		return err
	}, &response)
	if err != nil {
		return nil, shared.WrapError("platform", "GenerateQuestions", shared.ErrExternalService, "question generation failed", err)
	}
	if !response.Success {
		return nil, shared.WrapError("platform", "GenerateQuestions", shared.ErrExternalService, response.Error, nil)
	}

	questions, err := c.mapper.QuestionSetFromDTOs(response.Data)
	if err != nil {
		return nil, fmt.Errorf("map generated questions: %w", err)
	}
	return questions, nil
}
