package sipgate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"call-rewind-go/internal/logger"
)

const DefaultBaseURL = "https://api.sipgate.com/v2"

// Client talks to the sipgate REST API with a caller-supplied bearer token.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 12 * time.Second},
	}
}

type historyPage struct {
	Items []HistoryEntry `json:"items"`
}

// FetchHistoryPage requests one bounded page of history entries inside the
// [from, to) window. 401 and 503 responses map to the package sentinels so
// the fetch loop can tell them apart from transient failures.
func (c *Client) FetchHistoryPage(ctx context.Context, token string, from, to time.Time, limit, offset int) ([]HistoryEntry, error) {
	u, err := url.Parse(c.baseURL + "/history")
	if err != nil {
		return nil, fmt.Errorf("history url: %w", err)
	}
	q := u.Query()
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("history request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, ErrUnavailable
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("history request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var page historyPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("history decode: %w", err)
	}
	logger.New().WithField("component", "sipgate").
		WithField("offset", offset).
		WithField("items", len(page.Items)).
		Debug("history page fetched")
	return page.Items, nil
}
