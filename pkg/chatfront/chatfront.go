// Package chatfront provides a client for posting messages and
// managing roles through the community chat gateway that fronts this
// service.
package chatfront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/asyncrace/asyncrace/internal/logger"
)

// Message is one chat message posted to a channel. PingUserID and
// PingRoleID, when set, ask the gateway to mention that user or role.
type Message struct {
	ChannelID  int64  `json:"channel_id"`
	Content    string `json:"content"`
	PingUserID int64  `json:"ping_user_id,omitempty"`
	PingRoleID int64  `json:"ping_role_id,omitempty"`
}

// Outcome is the status portion of a gateway API response
type Outcome struct {
	OK          bool   `json:"ok"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GenericResponse is a generic gateway API response
type GenericResponse struct {
	Outcome Outcome `json:"outcome"`
}

// Client defines the interface for chat gateway operations
type Client interface {
	// PostMessage posts a message to a channel
	PostMessage(ctx context.Context, msg Message) error
	// PurgeChannel deletes all messages in a channel
	PurgeChannel(ctx context.Context, channelID int64) error
	// AssignRole grants a role to a user
	AssignRole(ctx context.Context, userID, roleID int64) error
	// ClearRole removes a role from every member that holds it
	ClearRole(ctx context.Context, roleID int64) error
	// BaseURL returns the configured gateway base URL
	BaseURL() string
	// SetBaseURL updates the gateway base URL
	SetBaseURL(url string)
	// SetToken configures the bot token sent with each request
	SetToken(token string)
}

// HTTPClient is a real HTTP client for the chat gateway
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new chat gateway HTTP client
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// NewHTTPClientWithHTTPClient creates a new chat gateway client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        log,
	}
}

// BaseURL returns the configured gateway base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetBaseURL updates the gateway base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetToken configures the bot token sent with each request
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// PostMessage posts a message to a channel
func (c *HTTPClient) PostMessage(ctx context.Context, msg Message) error {
	if msg.ChannelID == 0 {
		return fmt.Errorf("chatfront: channel id is required")
	}
	return c.post(ctx, "/api/messages", msg)
}

// PurgeChannel deletes all messages in a channel
func (c *HTTPClient) PurgeChannel(ctx context.Context, channelID int64) error {
	if channelID == 0 {
		return fmt.Errorf("chatfront: channel id is required")
	}
	return c.post(ctx, fmt.Sprintf("/api/channels/%d/purge", channelID), nil)
}

// AssignRole grants a role to a user
func (c *HTTPClient) AssignRole(ctx context.Context, userID, roleID int64) error {
	if userID == 0 || roleID == 0 {
		return fmt.Errorf("chatfront: user and role ids are required")
	}
	return c.post(ctx, fmt.Sprintf("/api/roles/%d/members/%d", roleID, userID), nil)
}

// ClearRole removes a role from every member that holds it
func (c *HTTPClient) ClearRole(ctx context.Context, roleID int64) error {
	if roleID == 0 {
		return fmt.Errorf("chatfront: role id is required")
	}
	return c.post(ctx, fmt.Sprintf("/api/roles/%d/clear", roleID), nil)
}

// post sends a gateway API request and checks the response outcome
func (c *HTTPClient) post(ctx context.Context, path string, payload interface{}) error {
	apiURL := c.baseURL + path

	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	c.log.Debug("Gateway request", "method", "POST", "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bot "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Gateway response", "status", resp.StatusCode, "body", string(body))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var response GenericResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !response.Outcome.OK {
		return fmt.Errorf("gateway error: %s (%s)", response.Outcome.Description, response.Outcome.Code)
	}

	return nil
}
