package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestClientFetch verifies the basic fetch path against a local server.
func TestClientFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Probe", "1")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("profile body"))
	}))
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Fetch(context.Background(), Request{URL: server.URL})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "profile body" {
		t.Errorf("unexpected body: %s", resp.Body)
	}
	if resp.Headers.Get("X-Probe") != "1" {
		t.Error("response headers not propagated")
	}
	if resp.Elapsed <= 0 {
		t.Error("expected positive elapsed time")
	}
}

// TestClientFetchNon2xxIsNotError verifies that 404s are responses,
// not errors: the prober needs the status to conclude "does not exist".
func TestClientFetchNon2xxIsNotError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.Fetch(context.Background(), Request{URL: server.URL})
	if err != nil {
		t.Fatalf("404 must not be an error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

// TestClientFetchTimeout verifies the per-request timeout converts into
// a retryable error.
func TestClientFetchTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client, err := NewClient(WithTimeout(20 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Fetch(context.Background(), Request{URL: server.URL})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !Retryable(err) {
		t.Errorf("timeouts must classify as retryable: %v", err)
	}
}

// TestClientFetchBodyCap verifies the oversized-body guard.
func TestClientFetchBodyCap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	client, err := NewClient(WithMaxBodySize(1024))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Fetch(context.Background(), Request{URL: server.URL})
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("expected ErrBodyTooLarge, got %v", err)
	}
}

// TestClientMimicry verifies mimicked requests carry a coherent browser
// profile and that explicit headers win over the profile.
func TestClientMimicry(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotCustom = r.Header.Get("X-Custom")
	}))
	defer server.Close()

	client, err := NewClient(WithMimicry(true))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Fetch(context.Background(), Request{
		URL:     server.URL,
		Headers: map[string]string{"X-Custom": "v"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(gotUA, "Mozilla/5.0") {
		t.Errorf("expected browser user agent, got %q", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("expected browser accept header, got %q", gotAccept)
	}
	if gotCustom != "v" {
		t.Errorf("explicit header lost: %q", gotCustom)
	}
}

// TestMimicHeadersRefererIsPlausible verifies referers come from search
// engines or the target origin.
func TestMimicHeadersRefererIsPlausible(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		headers := MimicHeaders("https://forge.example/alice")
		ref, ok := headers["Referer"]
		if !ok {
			continue // no referer is acceptable too
		}
		if !strings.HasPrefix(ref, "https://") {
			t.Fatalf("implausible referer %q", ref)
		}
	}
}

// TestWithSOCKS5InvalidAddress verifies proxy address validation.
func TestWithSOCKS5InvalidAddress(t *testing.T) {
	t.Parallel()

	for _, addr := range []string{"", "localhost", "http://x:1", "host:"} {
		if _, err := NewClient(WithSOCKS5(addr)); err == nil {
			t.Errorf("expected error for address %q", addr)
		}
	}
}

// TestRetryableClassification verifies the retry gate.
func TestRetryableClassification(t *testing.T) {
	t.Parallel()

	if Retryable(nil) {
		t.Error("nil is not retryable")
	}
	if Retryable(context.Canceled) {
		t.Error("cancellation is not retryable: the run is shutting down")
	}
	if !Retryable(context.DeadlineExceeded) {
		t.Error("deadline expiry should be retryable")
	}
}
