// Package upload sends history exports to a remote RepCoach server.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/ingest"
)

// Identity is the caller as the server sees it.
type Identity struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// Client sends exports to the RepCoach server over HTTP. It satisfies
// importer.Ingester, so the local importer can drive remote uploads.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the RepCoach server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// WhoAmI reports which user the server resolves this client to.
func (c *Client) WhoAmI(ctx context.Context) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/v1/me", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("identity request failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("decoding identity: %w", err)
	}
	return &id, nil
}

// Ingest POSTs one Alpha Progression export to the server's ingest endpoint.
// Retries up to 3 times with exponential backoff on transport errors and 5xx
// responses. The user ID is only honored by servers without Tailscale.
func (c *Client) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/ingest/alpha", bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/csv")
		req.Header.Set("X-API-Key", c.apiKey)
		if userID > 0 {
			req.Header.Set("X-User-ID", strconv.Itoa(userID))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var result ingest.Result
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding ingest result: %w", err)
			}
			return &result, nil
		case resp.StatusCode < 500:
			// 4xx is final.
			return nil, fmt.Errorf("ingest rejected (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
		}
		lastErr = fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
