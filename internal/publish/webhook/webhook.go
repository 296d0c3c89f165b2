// Package webhook publishes cards through a Discord-compatible incoming webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pingcard/pingcard/internal/card"
	"github.com/pingcard/pingcard/internal/publish"
)

const (
	defaultTimeout  = 15 * time.Second
	maxRetriesOn429 = 3
	maxBodySize     = 1 << 20 // 1 MiB
	userAgent       = "pingcard"

	// codeUnknownWebhook is the API error code for a deleted or invalid webhook.
	codeUnknownWebhook = 10015
)

// ErrWebhookNotFound is returned when the webhook itself no longer exists.
// Publishing cannot recover from it until WEBHOOK_URL is replaced.
var ErrWebhookNotFound = errors.New("webhook not found; it may have been deleted")

// Client talks to one webhook. The webhook URL carries its own credentials,
// so it is never included in returned errors.
type Client struct {
	URL  string
	HTTP *http.Client
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type messagePayload struct {
	Embeds          []embed         `json:"embeds"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

func New(webhookURL string) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(webhookURL), "/")
	if raw == "" {
		return nil, errors.New("webhook URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.New("webhook URL is invalid")
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, errors.New("webhook URL must use http or https")
	}
	if u.Host == "" {
		return nil, errors.New("webhook URL host is required")
	}
	return &Client{
		URL:  raw,
		HTTP: &http.Client{Timeout: defaultTimeout},
	}, nil
}

var _ publish.Messenger = (*Client)(nil)

func (c *Client) Create(ctx context.Context, cd card.Card) (string, error) {
	endpoint, err := c.endpoint("", url.Values{"wait": []string{"true"}})
	if err != nil {
		return "", err
	}
	body, err := c.do(ctx, http.MethodPost, endpoint, payloadFor(cd), ErrWebhookNotFound)
	if err != nil {
		return "", err
	}
	var msg struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", fmt.Errorf("decode webhook message: %w", err)
	}
	if strings.TrimSpace(msg.ID) == "" {
		return "", errors.New("webhook response is missing the message id")
	}
	return msg.ID, nil
}

func (c *Client) Edit(ctx context.Context, messageID string, cd card.Card) error {
	endpoint, err := c.messageEndpoint(messageID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPatch, endpoint, payloadFor(cd), publish.ErrMessageNotFound)
	return err
}

func (c *Client) Exists(ctx context.Context, messageID string) (bool, error) {
	endpoint, err := c.messageEndpoint(messageID)
	if err != nil {
		return false, err
	}
	_, err = c.do(ctx, http.MethodGet, endpoint, nil, publish.ErrMessageNotFound)
	if errors.Is(err, publish.ErrMessageNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) Delete(ctx context.Context, messageID string) error {
	endpoint, err := c.messageEndpoint(messageID)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, endpoint, nil, publish.ErrMessageNotFound)
	return err
}

func payloadFor(cd card.Card) *messagePayload {
	return &messagePayload{
		Embeds: []embed{{
			Title:       cd.Title,
			Description: cd.Description(),
			Color:       int(cd.Color),
		}},
		AllowedMentions: allowedMentions{Parse: []string{}},
	}
}

func (c *Client) messageEndpoint(messageID string) (string, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return "", errors.New("message id is required")
	}
	return c.endpoint("/messages/"+url.PathEscape(messageID), nil)
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	if c.URL == "" {
		return "", errors.New("webhook URL is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", errors.New("webhook URL is invalid")
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	u.Fragment = ""
	return u.String(), nil
}

// do sends one request, retrying rate limits. A 404 is reported as notFound
// unless the body identifies the webhook itself as unknown.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any, notFound error) ([]byte, error) {
	if c.HTTP == nil {
		return nil, errors.New("webhook http client is not configured")
	}

	var encoded []byte
	if payload != nil {
		var err error
		encoded, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode webhook payload: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetriesOn429; attempt++ {
		var reqBody io.Reader
		if encoded != nil {
			reqBody = bytes.NewReader(encoded)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build webhook request: %w", err)
		}
		if encoded != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, fmt.Errorf("webhook %s request failed: %w", method, redact(err))
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = formatAPIError("webhook rate limited", method, resp, body)
			if attempt == maxRetriesOn429 {
				return nil, lastErr
			}
			wait, ok := retryAfterDuration(resp.Header.Get("Retry-After"), body)
			if !ok {
				wait = time.Second
			}
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		case resp.StatusCode == http.StatusNotFound:
			if apiErrorCode(body) == codeUnknownWebhook {
				return nil, ErrWebhookNotFound
			}
			return nil, notFound
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, formatAPIError("webhook request failed", method, resp, body)
		}
		return body, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("webhook request failed")
}

// redact strips the request URL, which embeds the webhook token, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func retryAfterDuration(header string, body []byte) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header != "" {
		if secs, err := strconv.ParseFloat(header, 64); err == nil && secs >= 0 {
			return time.Duration(secs * float64(time.Second)), true
		}
	}
	var payload struct {
		RetryAfter *float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter != nil && *payload.RetryAfter >= 0 {
		return time.Duration(*payload.RetryAfter * float64(time.Second)), true
	}
	return 0, false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func apiErrorCode(body []byte) int {
	var payload struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0
	}
	return payload.Code
}

func formatAPIError(prefix, method string, resp *http.Response, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		if payload.Code != 0 {
			return fmt.Errorf("%s: %s %s: %s (code=%d)", prefix, method, resp.Status, strings.TrimSpace(payload.Message), payload.Code)
		}
		return fmt.Errorf("%s: %s %s: %s", prefix, method, resp.Status, strings.TrimSpace(payload.Message))
	}
	return fmt.Errorf("%s: %s %s", prefix, method, resp.Status)
}
