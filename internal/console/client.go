package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is a typed client for the dashboard API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewClient builds a client against the given API base URL, for example
// "http://localhost:8080/api/v1".
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Error      *appErrors.Error   `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) (*models.Pagination, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		if env.Error != nil {
			return nil, env.Error
		}
		return nil, appErrors.New("HTTP_ERROR", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode payload %s %s: %w", method, path, err)
		}
	}
	return env.Pagination, nil
}

// Login authenticates and returns the issued tokens with the user profile.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var result models.LoginResponse
	payload := models.LoginRequest{Email: email, Password: password}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Refresh exchanges a refresh token for a fresh pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.RefreshTokenResponse, error) {
	var result models.RefreshTokenResponse
	payload := models.RefreshTokenRequest{RefreshToken: refreshToken}
	if _, err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout revokes the refresh token server side.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	payload := models.RefreshTokenRequest{RefreshToken: refreshToken}
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, payload, nil)
	return err
}

// Profile resolves the caller's profile from the access token.
func (c *Client) Profile(ctx context.Context) (*models.UserInfo, error) {
	var info models.UserInfo
	if _, err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Navigation fetches the menu entries visible to the caller.
func (c *Client) Navigation(ctx context.Context) ([]models.NavigationEntry, error) {
	var entries []models.NavigationEntry
	if _, err := c.do(ctx, http.MethodGet, "/navigation", nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// UnreadCount returns the caller's unread notification count.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var payload struct {
		Count int `json:"count"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

// Notifications fetches one page of the caller's notifications.
func (c *Client) Notifications(ctx context.Context, page, pageSize int, read *bool) ([]models.Notification, *models.Pagination, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	if read != nil {
		query.Set("read", strconv.FormatBool(*read))
	}
	var notifications []models.Notification
	pagination, err := c.do(ctx, http.MethodGet, "/notifications", query, nil, &notifications)
	if err != nil {
		return nil, nil, err
	}
	return notifications, pagination, nil
}

// MarkNotificationRead marks a notification read. A 404 from the server is
// treated as success so an optimistic UI update never has to roll back when
// the row is already gone.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPatch, "/notifications/"+id+"/read", nil, nil, nil)
	return ignoreNotFound(err)
}

// MarkAllNotificationsRead marks every unread notification read and returns
// how many rows changed.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	var payload struct {
		Updated int `json:"updated"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/notifications/read-all", nil, nil, &payload); err != nil {
		return 0, err
	}
	return payload.Updated, nil
}

// DeleteNotification deletes a notification, tolerating a 404 the same way
// MarkNotificationRead does.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/notifications/"+id, nil, nil, nil)
	return ignoreNotFound(err)
}

// Alerts fetches one page of alerts with optional status and severity filters.
func (c *Client) Alerts(ctx context.Context, page, pageSize int, status, severity string) ([]models.Alert, *models.Pagination, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	if status != "" {
		query.Set("status", status)
	}
	if severity != "" {
		query.Set("severity", severity)
	}
	var alerts []models.Alert
	pagination, err := c.do(ctx, http.MethodGet, "/alerts", query, nil, &alerts)
	if err != nil {
		return nil, nil, err
	}
	return alerts, pagination, nil
}

// UpdateAlertStatus transitions an alert to a new status.
func (c *Client) UpdateAlertStatus(ctx context.Context, id string, status models.AlertStatus) (*models.Alert, error) {
	var alert models.Alert
	payload := map[string]models.AlertStatus{"status": status}
	if _, err := c.do(ctx, http.MethodPatch, "/alerts/"+id+"/status", nil, payload, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// Dashboard fetches the landing page summary.
func (c *Client) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	if _, err := c.do(ctx, http.MethodGet, "/dashboard/summary", nil, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func ignoreNotFound(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*appErrors.Error); ok && appErr.Status == http.StatusNotFound {
		return nil
	}
	return err
}
