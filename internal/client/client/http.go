package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/common"
	"github.com/daybook-app/daybook/internal/journal"
)

// HTTPClient implements Client over the server's JSON HTTP API.
type HTTPClient struct {
	baseURL     string
	http        *http.Client
	accessToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetAccessToken(token string) {
	c.accessToken = token
}

// do performs one round trip and decodes the response into out. Network
// failures and timeouts map to common.ErrTransport; an unauthorized status
// maps to common.ErrUnauthorized; other non-2xx statuses surface the
// server's error message.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return common.ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("server error: %s", errResp.Error)
		}
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", common.ErrTransport, err)
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/ping", nil, nil)
}

func (c *HTTPClient) Push(ctx context.Context, deviceID string, entries []api.EntryPayload) ([]api.PushResult, error) {
	req := api.PushRequest{DeviceID: deviceID, Entries: entries}

	var resp api.PushResponse
	if err := c.do(ctx, http.MethodPost, "/api/sync/push", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *HTTPClient) Upsert(ctx context.Context, entry api.EntryPayload) (*api.UpsertResponse, error) {
	var resp api.UpsertResponse
	if err := c.do(ctx, http.MethodPost, "/api/entries/upsert", entry, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetEntry(ctx context.Context, date journal.Date) (*api.Entry, error) {
	var resp api.EntryResponse
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+date.String(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entry, nil
}

func (c *HTTPClient) GetFlashbacks(ctx context.Context, date journal.Date) (*api.FlashbacksResponse, error) {
	var resp api.FlashbacksResponse
	if err := c.do(ctx, http.MethodGet, "/api/flashbacks/"+date.String(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) RequestMagicLink(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/magic-link/request", api.MagicLinkRequest{Email: email}, nil)
}

func (c *HTTPClient) ConsumeMagicLink(ctx context.Context, token string) (string, error) {
	var resp api.ConsumeResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/magic-link/consume", api.ConsumeRequest{Token: token}, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}
