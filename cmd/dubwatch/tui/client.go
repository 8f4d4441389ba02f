package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/franclarke/multidub-ai/types"
)

// Client is a thin HTTP client for the dubbing service API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new dubbing service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetStatus fetches the current status of one video.
func (c *Client) GetStatus(videoID string) (*types.VideoStatus, error) {
	resp, err := c.client.Get(c.baseURL + "/api/videos/" + videoID + "/status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var status types.VideoStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &status, nil
}

// Cancel requests cancellation of one output.
func (c *Client) Cancel(outputID string) error {
	resp, err := c.client.Post(c.baseURL+"/api/outputs/"+outputID+"/cancel", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		return fmt.Errorf("failed to cancel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
