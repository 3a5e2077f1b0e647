package webpush

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// ErrSubscriptionExpired is returned when the push service reports the
// endpoint permanently gone (404/410). The caller must delete the
// subscription; this is a normal lifecycle outcome, not a failure.
var ErrSubscriptionExpired = errors.New("webpush: subscription expired")

// TransportError is any delivery response that is neither an accept nor
// an expiry. It is logged and counted; never retried within a run.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("push service returned %d: %s", e.StatusCode, e.Body)
}

// Payload is the JSON the service worker receives after decryption.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Client delivers encrypted records to push service endpoints.
type Client struct {
	http *http.Client
}

// NewClient creates a push transport client with the given per-request
// timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Send POSTs an encrypted record to the subscription endpoint. A nil
// error means the push service accepted the message (200/201);
// ErrSubscriptionExpired means the endpoint is gone for good; any other
// status comes back as a *TransportError.
func (c *Client) Send(ctx context.Context, endpoint string, record []byte, authorization string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(record))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("TTL", "86400")
	req.Header.Set("Content-Encoding", "aes128gcm")
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-Length", strconv.Itoa(len(record)))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusNotFound, http.StatusGone:
		return ErrSubscriptionExpired
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransportError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
}
