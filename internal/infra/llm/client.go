// Package llm provides an OpenAI-compatible chat completions client
// implementing domain.LanguageModel.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v5"
	"github.com/liang/fanqie/internal/domain"
)

// Retry policy.
const (
	MaxAttempts    = 3
	BaseBackoff    = 400 * time.Millisecond
	MaxBackoff     = 6 * time.Second
	RequestTimeout = 20 * time.Second

	errorBriefLimit = 300
)

// Ensure Client implements domain.LanguageModel.
var _ domain.LanguageModel = (*Client)(nil)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// HTTPError is a non-2xx reply from the endpoint.
type HTTPError struct {
	Message    string
	StatusCode int
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("model request failed (%d)", e.StatusCode)
	}
	return fmt.Sprintf("model request failed (%d): %s", e.StatusCode, e.Message)
}

// Retryable reports whether the status is worth another attempt.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= 500
}

// Client talks to a chat completions endpoint.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	baseBackoff time.Duration
	maxBackoff  time.Duration
	maxAttempts uint
}

// NewClient creates a client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = domain.DefaultEndpoint
	}
	return &Client{
		endpoint:    endpoint,
		httpClient:  &http.Client{Timeout: RequestTimeout},
		baseBackoff: BaseBackoff,
		maxBackoff:  MaxBackoff,
		maxAttempts: MaxAttempts,
	}
}

// Chat sends messages and returns the trimmed content of the first choice.
// Transport errors and 408, 429 and 5xx replies are retried.
func (c *Client) Chat(ctx context.Context, creds domain.ModelCredentials, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{Model: creds.Model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	// lastErr keeps the cause readable when a retry wrapper hides it.
	var lastErr error
	content, err := backoff.Retry(ctx, func() (string, error) {
		content, err := c.send(ctx, creds.APIKey, body)
		if err == nil {
			return content, nil
		}
		lastErr = err

		var permanent *backoff.PermanentError
		var delayed *retryAfterError
		var httpErr *HTTPError
		switch {
		case errors.As(err, &permanent):
			lastErr = permanent.Err
		case errors.As(err, &delayed):
			lastErr = delayed.cause
			delayed.Duration = min(delayed.Duration, c.maxBackoff)
		case errors.As(err, &httpErr) && !httpErr.Retryable():
			return "", backoff.Permanent(err)
		}
		return "", err
	},
		backoff.WithBackOff(&quadraticBackOff{base: c.baseBackoff, max: c.maxBackoff}),
		backoff.WithMaxTries(c.maxAttempts),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if lastErr != nil {
			return "", lastErr
		}
		return "", err
	}
	return content, nil
}

// retryAfterError pairs a server-requested delay with the reply that asked for it.
type retryAfterError struct {
	*backoff.RetryAfterError
	cause error
}

func (e *retryAfterError) Unwrap() []error {
	return []error{e.RetryAfterError, e.cause}
}

func (c *Client) send(ctx context.Context, apiKey string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		if seconds, ok := retryAfterSeconds(resp.Header); ok && httpErr.Retryable() {
			return "", &retryAfterError{
				RetryAfterError: &backoff.RetryAfterError{Duration: time.Duration(seconds) * time.Second},
				cause:           httpErr,
			}
		}
		return "", httpErr
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", backoff.Permanent(fmt.Errorf("parse response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", backoff.Permanent(errors.New("empty model response"))
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", backoff.Permanent(errors.New("empty model response"))
	}
	return content, nil
}

// Interpret asks the model for task fields found in raw.
func (c *Client) Interpret(ctx context.Context, creds domain.ModelCredentials, raw string) (*domain.RemoteIntent, error) {
	content, err := c.Chat(ctx, creds, interpretMessages(raw))
	if err != nil {
		return nil, fmt.Errorf("interpret: %w", err)
	}
	intent, err := ParseIntentReply(content)
	if err != nil {
		return nil, fmt.Errorf("interpret: %w", err)
	}
	return intent, nil
}

// Decompose asks the model to split title into subtasks.
func (c *Client) Decompose(ctx context.Context, creds domain.ModelCredentials, title string) ([]domain.SubtaskDraft, error) {
	content, err := c.Chat(ctx, creds, decomposeMessages(title))
	if err != nil {
		return nil, fmt.Errorf("decompose: %w", err)
	}
	drafts, err := ParseSubtaskReply(content)
	if err != nil {
		return nil, fmt.Errorf("decompose: %w", err)
	}
	return drafts, nil
}

// quadraticBackOff waits base*n² before the nth retry, capped at max.
type quadraticBackOff struct {
	base    time.Duration
	max     time.Duration
	attempt int64
}

func (b *quadraticBackOff) NextBackOff() time.Duration {
	b.attempt++
	d := b.base * time.Duration(b.attempt*b.attempt)
	if d > b.max || d < 0 {
		return b.max
	}
	return d
}

func (b *quadraticBackOff) Reset() {
	b.attempt = 0
}

func retryAfterSeconds(h http.Header) (int, bool) {
	value := strings.TrimSpace(h.Get("Retry-After"))
	if value == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return seconds, true
}

// errorMessage extracts a readable message from an error body.
// OpenAI-style {"error":{"message":...}} and flat {"message":...} are
// recognised; anything else is returned trimmed to a short brief.
func errorMessage(body []byte) string {
	var structured struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		if structured.Error != nil && structured.Error.Message != "" {
			return structured.Error.Message
		}
		if structured.Message != "" {
			return structured.Message
		}
	}

	brief := strings.TrimSpace(string(body))
	if len(brief) > errorBriefLimit {
		cut := errorBriefLimit
		for cut > 0 && !utf8.RuneStart(brief[cut]) {
			cut--
		}
		brief = brief[:cut] + "..."
	}
	return brief
}
