// Package apiclient talks to the remote interview practice endpoint.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/luoxingyu/mockview/internal/model/chat"
)

// Client posts user messages to POST {base}/api/chat and extracts the reply.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// chatRequest is the outbound wire format: the trimmed user message plus the
// bounded prior context window.
type chatRequest struct {
	Message             string         `json:"message"`
	ConversationHistory []chat.Message `json:"conversationHistory"`
}

type chatResponse struct {
	Message string `json:"message"`
}

// New returns a client for the given base URL. No request timeout is set;
// cancellation is the caller's context's business.
func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{})
}

// NewWithHTTPClient allows injecting the transport, mainly for tests.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Reply sends one message and returns the interviewer's reply text. A 2xx
// response with a missing or unreadable message field is not an error: the
// reply is simply empty and the caller substitutes its fallback copy. Non-2xx
// statuses and transport failures are errors.
func (c *Client) Reply(ctx context.Context, message string, history []chat.Message) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Message:             message,
		ConversationHistory: history,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Tolerated: any 2xx body without a usable message field.
		return "", nil
	}
	return parsed.Message, nil
}
