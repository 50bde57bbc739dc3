package platform

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION SERVICE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetSessionByID fetches a single session. The invite coordinator uses it,
// behind a session.Lookup adapter, to hydrate bare-ID invite references.
func (c *Client) GetSessionByID(ctx context.Context, id session.ID) (*session.Session, error) {
	var response APIResponse[SessionDTO]
	path := "/api/v1/sessions/" + url.PathEscape(id.String())
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("api error: %s", response.Error)
	}
	return c.mapper.SessionFromDTO(&response.Data)
}

// GetCreatedSessions fetches sessions created by the current user.
func (c *Client) GetCreatedSessions(ctx context.Context) ([]*session.Session, error) {
	return c.getSessionList(ctx, "/api/v1/sessions/created")
}

// GetJoinedSessions fetches sessions the current user joined.
func (c *Client) GetJoinedSessions(ctx context.Context) ([]*session.Session, error) {
	return c.getSessionList(ctx, "/api/v1/sessions/joined")
}

func (c *Client) getSessionList(ctx context.Context, path string) ([]*session.Session, error) {
	var response APIResponse[[]SessionDTO]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("api error: %s", response.Error)
	}
	return c.mapper.SessionsFromDTOs(response.Data)
}

// CreateSession creates a session through the plain JSON path. The quiz
// question set is included only when the draft carries one.
func (c *Client) CreateSession(ctx context.Context, draft session.Draft) (*session.Session, error) {
	payload, err := c.mapper.CreateRequestFromDraft(draft)
	if err != nil {
		return nil, err
	}

	var response APIResponse[SessionDTO]
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/sessions", payload, &response); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("api error: %s", response.Error)
	}
	return c.mapper.SessionFromDTO(&response.Data)
}

// CreateSessionWithDocuments creates a session through the multipart path,
// carrying the draft's attachments and the pre-generated question set.
func (c *Client) CreateSessionWithDocuments(ctx context.Context, draft session.Draft) (*session.Session, error) {
	payload, err := c.mapper.CreateRequestFromDraft(draft)
	if err != nil {
		return nil, err
	}

	var response APIResponse[SessionDTO]
	err = c.doMultipart(ctx, "/api/v1/sessions/with-documents", func(mw *multipart.Writer) error {
		if err := writeJSONField(mw, "session", payload); err != nil {
			return err
		}
		for _, doc := range draft.Documents {
			part, err := mw.CreateFormFile("documents", doc.Filename)
			if err != nil {
				return err
			}
			if _, err := part.Write(doc.Content); err != nil {
				return err
			}
		}
		return nil
	}, &response)
	if err != nil {
		return nil, fmt.Errorf("create session with documents: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("api error: %s", response.Error)
	}
	return c.mapper.SessionFromDTO(&response.Data)
}

// CancelSession marks a session cancelled (participant-side operation).
func (c *Client) CancelSession(ctx context.Context, id session.ID) error {
	path := "/api/v1/sessions/" + url.PathEscape(id.String()) + "/cancel"
	if err := c.doRequest(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}
	return nil
}

// DeleteSession removes a session entirely (creator-side operation).
func (c *Client) DeleteSession(ctx context.Context, id session.ID) error {
	path := "/api/v1/sessions/" + url.PathEscape(id.String())
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RateSession stores or overwrites the current user's rating. The server
// recomputes the average; the response is discarded because the store
// reloads the joined list afterwards anyway.
func (c *Client) RateSession(ctx context.Context, id session.ID, rating session.Rating, comment string) error {
	path := "/api/v1/sessions/" + url.PathEscape(id.String()) + "/ratings"
	payload := RateSessionRequestDTO{Rating: int(rating), Comment: comment}
	if err := c.doRequest(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("rate session: %w", err)
	}
	return nil
}
