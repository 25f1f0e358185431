// Package remote предоставляет клиент для внешнего endpoint синхронизации.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Client инкапсулирует HTTP-взаимодействие с внешним endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Result содержит произвольный JSON-ответ endpoint.
type Result map[string]any

// NewClient создаёт HTTP-клиент для обращения к endpoint по указанному адресу.
// Сетевые ошибки и ответы 5xx повторяются до двух раз.
func NewClient(endpoint string) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.RetryMax = 2
	rc.RetryWaitMin = 50 * time.Millisecond
	rc.RetryWaitMax = 500 * time.Millisecond
	rc.Logger = nil

	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: rc.StandardClient(),
	}
}

// Call вызывает действие action. GET передаёт action в строке запроса,
// POST отправляет JSON-тело с полем action и полями data.
func (c *Client) Call(ctx context.Context, action string, data map[string]any, method string) (Result, error) {
	if c == nil || c.endpoint == "" {
		return nil, fmt.Errorf("remote client not configured")
	}

	base := c.endpoint
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	var (
		req *http.Request
		err error
	)

	switch method {
	case http.MethodGet:
		u := base
		if action != "" {
			u += "?action=" + url.QueryEscape(action)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	case http.MethodPost:
		payload := make(map[string]any, len(data)+1)
		for k, v := range data {
			payload[k] = v
		}
		payload["action"] = action

		body, mErr := json.Marshal(payload)
		if mErr != nil {
			return nil, fmt.Errorf("encode payload: %w", mErr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, base, bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return result, nil
}
