// Package transport submits synthesis requests to the upstream webhook and
// returns whatever came back as an unvalidated response envelope.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/hireflow/internal/types"
)

// DefaultTimeout is the default HTTP request timeout. Synthesis is slow.
const DefaultTimeout = 120 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "HireFlow/1.0"

// acceptHeader lists every response shape the webhook is known to produce.
const acceptHeader = "application/json, application/pdf, */*"

// DefaultMaxResponseBytes bounds the response body read from the webhook.
const DefaultMaxResponseBytes int64 = 50 << 20

// maxExcerpt bounds the amount of an error body carried in an Error.
const maxExcerpt = 300

// Error represents a failed webhook call.
type Error struct {
	URL        string
	StatusCode int
	Message    string
	Body       string
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("synthesis request to %s failed: %s", e.URL, e.Message)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the webhook client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// MaxResponseBytes caps the response body; larger bodies are an Error.
	MaxResponseBytes int64
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// DefaultOptions returns sensible defaults for the webhook client.
func DefaultOptions() *Options {
	return &Options{
		Timeout:          DefaultTimeout,
		UserAgent:        DefaultUserAgent,
		MaxResponseBytes: DefaultMaxResponseBytes,
	}
}

// Webhook posts synthesis requests to a single endpoint. There is no retry.
type Webhook struct {
	url     string
	client  *http.Client
	options *Options
	now     func() time.Time
}

// NewWebhook creates a client for the given endpoint.
func NewWebhook(endpoint string, opts *Options) (*Webhook, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: endpoint, Message: "invalid URL", Cause: err}
	}

	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxResponseBytes <= 0 {
		opts.MaxResponseBytes = DefaultMaxResponseBytes
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Webhook{url: endpoint, client: client, options: opts, now: time.Now}, nil
}

// requestBody is the JSON document sent upstream.
type requestBody struct {
	types.SynthesisRequest
	Timestamp string `json:"timestamp"`
}

// Submit posts req and classifies the response: a PDF content type becomes a
// BinaryPayload, anything else a TextPayload left for the locator to parse.
func (w *Webhook) Submit(ctx context.Context, req types.SynthesisRequest) (types.Envelope, error) {
	if req.Action == "" {
		req.Action = types.DefaultAction
	}

	body, err := json.Marshal(requestBody{
		SynthesisRequest: req,
		Timestamp:        w.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, &Error{URL: w.url, Message: "failed to encode request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{URL: w.url, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", acceptHeader)
	httpReq.Header.Set("User-Agent", w.options.UserAgent)
	for key, value := range w.options.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return nil, &Error{URL: w.url, Message: "could not connect to the synthesis service", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	limit := w.options.MaxResponseBytes
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &Error{URL: w.url, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}
	if int64(len(respBody)) > limit {
		return nil, &Error{
			URL:        w.url,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("response body exceeds %d bytes", limit),
		}
	}

	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fmt.Sprintf("HTTP status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusInternalServerError {
			message = "upstream internal error (500)"
		}
		return nil, &Error{
			URL:        w.url,
			StatusCode: resp.StatusCode,
			Message:    message,
			Body:       excerpt(respBody, contentType),
		}
	}

	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return types.BinaryPayload{Data: respBody, ContentType: contentType}, nil
	}
	return types.TextPayload{Text: string(respBody)}, nil
}

// excerpt returns a short readable version of an error body.
func excerpt(body []byte, contentType string) string {
	text := string(body)
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		if extracted, err := ExtractText(text); err == nil {
			text = extracted
		}
	}
	text = strings.TrimSpace(text)
	if len(text) > maxExcerpt {
		cut := maxExcerpt
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}
