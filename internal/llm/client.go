package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const apiVersion = "2023-06-01"

// ErrEmptyCompletion is returned when the service answers without any text.
var ErrEmptyCompletion = errors.New("completion contained no text")

// StatusError is a non-2xx answer from the completion service.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm %s returned %d: %s", e.Path, e.Code, e.Body)
}

// Role is the speaker of a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged entry of a completion request.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is an ordered list of turns plus generation limits.
type Request struct {
	Turns     []Turn
	MaxTokens int
}

// Completer is the completion service: ordered turns in, text out.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Client calls a Messages-style completion API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Model is the model name sent with every request.
func (c *Client) Model() string {
	return c.model
}

type messagesRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []Turn `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete calls POST /v1/messages and returns the first text block.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	const path = "/v1/messages"
	if len(req.Turns) == 0 {
		return "", fmt.Errorf("llm %s: no turns", path)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	body, err := json.Marshal(messagesRequest{Model: c.model, MaxTokens: maxTokens, Messages: req.Turns})
	if err != nil {
		return "", fmt.Errorf("llm %s: marshal: %w", path, err)
	}
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, path); err != nil {
		return "", err
	}

	var result messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("llm %s: decode: %w", path, err)
	}
	for _, block := range result.Content {
		if block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("llm %s: %w", path, ErrEmptyCompletion)
}

// checkResp returns a *StatusError carrying the upstream body if the status is not 2xx.
func checkResp(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Path: path, Code: resp.StatusCode, Body: string(body)}
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", apiVersion)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm %s: %w", path, err)
	}
	return resp, nil
}
