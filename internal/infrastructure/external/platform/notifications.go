package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/peerlink-hub/peerlink-sessions/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION SERVICE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetPendingInvites fetches a page of the inbox and keeps only unread
// session invites. Session references inside the metadata stay in whatever
// hydration state the server sent them; the invite coordinator hydrates the
// bare ones.
func (c *Client) GetPendingInvites(ctx context.Context, page, limit int) ([]notification.Invite, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/v1/notifications"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var response APIResponse[NotificationsPageDTO]
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, fmt.Errorf("get notifications: %w", err)
	}
	if !response.Success {
		return nil, fmt.Errorf("api error: %s", response.Error)
	}

	invites := make([]notification.Invite, 0, len(response.Data.Notifications))
	for i := range response.Data.Notifications {
		dto := &response.Data.Notifications[i]
		if dto.Type != string(notification.KindSessionInvite) || dto.IsRead {
			continue
		}
		invite, err := c.mapper.InviteFromDTO(dto)
		if err != nil {
			// A malformed invite must not hide the rest of the inbox.
			c.logger.Error("skipping malformed session invite", "notification_id", dto.ID, "error", err)
			continue
		}
		invites = append(invites, invite)
	}
	return invites, nil
}

// MarkNotificationRead marks a single notification as read, removing it
// from the pending invite feed on the next fetch.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	path := "/api/v1/notifications/" + url.PathEscape(notificationID) + "/read"
	if err := c.doRequest(ctx, http.MethodPatch, path, nil, nil); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// RespondToSessionInvite answers an invite. On accept the server performs
// the session join; the client only observes it through the next joined-list
// reload.
func (c *Client) RespondToSessionInvite(ctx context.Context, inviteID string, action notification.InviteAction) error {
	path := "/api/v1/notifications/" + url.PathEscape(inviteID) + "/respond"
	payload := map[string]string{"action": string(action)}
	if err := c.doRequest(ctx, http.MethodPost, path, payload, nil); err != nil {
		return fmt.Errorf("respond to invite: %w", err)
	}
	return nil
}
