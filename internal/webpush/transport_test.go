package webpush

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendDelivered(t *testing.T) {
	record := []byte{0x01, 0x02, 0x03}

	var gotHeaders http.Header
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	if err := client.Send(context.Background(), srv.URL, record, "vapid t=abc, k=def"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if got := gotHeaders.Get("Authorization"); got != "vapid t=abc, k=def" {
		t.Errorf("Authorization = %q", got)
	}
	if got := gotHeaders.Get("TTL"); got != "86400" {
		t.Errorf("TTL = %q, want 86400", got)
	}
	if got := gotHeaders.Get("Content-Encoding"); got != "aes128gcm" {
		t.Errorf("Content-Encoding = %q, want aes128gcm", got)
	}
	if got := gotHeaders.Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("Content-Type = %q, want application/octet-stream", got)
	}
	if string(gotBody) != string(record) {
		t.Errorf("body = % x, want % x", gotBody, record)
	}
}

func TestSendClassifiesExpired(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := NewClient(5 * time.Second)
		err := client.Send(context.Background(), srv.URL, []byte("x"), "vapid t=a, k=b")
		srv.Close()

		if !errors.Is(err, ErrSubscriptionExpired) {
			t.Errorf("status %d: err = %v, want ErrSubscriptionExpired", status, err)
		}
	}
}

func TestSendClassifiesTransportError(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, "rate limited")
	}))
	defer srv.Close()

	client := NewClient(5 * time.Second)
	err := client.Send(context.Background(), srv.URL, []byte("x"), "vapid t=a, k=b")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if te.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", te.StatusCode)
	}
	if te.Body != "rate limited" {
		t.Errorf("body = %q, want %q", te.Body, "rate limited")
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (no retry within a send)", requests)
	}
}
