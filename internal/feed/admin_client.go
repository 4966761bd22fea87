package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AdminClient queries the gateway's HTTP API for channel admin lists.
// The WebSocket stream flags admin senders when the gateway knows them;
// this client is the fallback for messages that arrive without the flag.
type AdminClient struct {
	baseURL string
	client  *http.Client
}

// NewAdminClient creates an admin client against the gateway HTTP API.
func NewAdminClient(baseURL string, client *http.Client) *AdminClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &AdminClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// adminsResponse is the gateway's admin-list payload.
type adminsResponse struct {
	ChannelID int64   `json:"channelId"`
	AdminIDs  []int64 `json:"adminIds"`
}

// ChannelAdmins returns the sender IDs that are admins of the channel.
func (a *AdminClient) ChannelAdmins(ctx context.Context, channelID int64) ([]int64, error) {
	url := fmt.Sprintf("%s/channels/%d/admins", a.baseURL, channelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var payload adminsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return payload.AdminIDs, nil
}
