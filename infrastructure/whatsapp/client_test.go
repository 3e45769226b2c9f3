package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubTransport(t *testing.T, capture *capturedRequest) {
	t.Helper()
	orig := httpClient
	t.Cleanup(func() { httpClient = orig })

	httpClient = &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			capture.method = req.Method
			capture.url = req.URL.String()
			capture.auth = req.Header.Get("Authorization")
			_, capture.hasDeadline = req.Context().Deadline()
			if req.Body != nil {
				b, _ := io.ReadAll(req.Body)
				capture.body = b
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader([]byte(`{}`))),
				Header:     make(http.Header),
			}, nil
		}),
	}
}

type capturedRequest struct {
	method      string
	url         string
	auth        string
	body        []byte
	hasDeadline bool
}

func TestSendText_BuildsCloudAPIRequest(t *testing.T) {
	var got capturedRequest
	stubTransport(t, &got)

	client := NewClient(Config{
		AccessToken:   "tok-123",
		PhoneNumberID: "5550001",
		GraphVersion:  "v20.0",
	})

	if err := client.SendText(context.Background(), "15551112222", "hello there"); err != nil {
		t.Fatalf("SendText() unexpected error: %v", err)
	}

	if got.method != http.MethodPost {
		t.Fatalf("expected POST, got %q", got.method)
	}
	wantURL := "https://graph.facebook.com/v20.0/5550001/messages"
	if got.url != wantURL {
		t.Fatalf("unexpected URL: got %q, want %q", got.url, wantURL)
	}
	if got.auth != "Bearer tok-123" {
		t.Fatalf("unexpected Authorization header: %q", got.auth)
	}

	var payload map[string]any
	if err := json.Unmarshal(got.body, &payload); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if payload["messaging_product"] != "whatsapp" {
		t.Fatalf("unexpected messaging_product: %#v", payload["messaging_product"])
	}
	if payload["to"] != "15551112222" || payload["type"] != "text" {
		t.Fatalf("unexpected addressing: %#v", payload)
	}
	text, _ := payload["text"].(map[string]any)
	if text["body"] != "hello there" {
		t.Fatalf("unexpected body: %#v", text)
	}
}

func TestSendText_TruncatesToProviderLimit(t *testing.T) {
	var got capturedRequest
	stubTransport(t, &got)

	client := NewClient(Config{
		AccessToken:   "tok",
		PhoneNumberID: "1",
		MaxTextLength: 10,
	})

	long := strings.Repeat("x", 50)
	if err := client.SendText(context.Background(), "155", long); err != nil {
		t.Fatalf("SendText() unexpected error: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(got.body, &payload); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	text, _ := payload["text"].(map[string]any)
	if body, _ := text["body"].(string); len(body) != 10 {
		t.Fatalf("expected 10-char body, got %d chars", len(body))
	}
}

func TestSendText_MissingCredentialsIsNoOp(t *testing.T) {
	var got capturedRequest
	stubTransport(t, &got)

	client := NewClient(Config{})
	if err := client.SendText(context.Background(), "155", "hi"); err != nil {
		t.Fatalf("SendText() unexpected error: %v", err)
	}
	if got.method != "" {
		t.Fatalf("expected no HTTP call, got %s %s", got.method, got.url)
	}
}

func TestSendInteractive_MergesAddressing(t *testing.T) {
	var got capturedRequest
	stubTransport(t, &got)

	client := NewClient(Config{AccessToken: "tok", PhoneNumberID: "1"})
	menu := map[string]any{"type": "interactive", "interactive": map[string]any{"type": "list"}}
	if err := client.SendInteractive(context.Background(), "155", menu); err != nil {
		t.Fatalf("SendInteractive() unexpected error: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(got.body, &payload); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if payload["to"] != "155" || payload["type"] != "interactive" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if payload["messaging_product"] != "whatsapp" {
		t.Fatalf("missing messaging_product: %#v", payload)
	}
}

func TestSendText_SurfacesAPIError(t *testing.T) {
	orig := httpClient
	t.Cleanup(func() { httpClient = orig })
	httpClient = &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusUnauthorized,
				Body:       io.NopCloser(bytes.NewReader([]byte(`{"error":"bad token"}`))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	client := NewClient(Config{AccessToken: "bad", PhoneNumberID: "1"})
	err := client.SendText(context.Background(), "155", "hi")
	if err == nil || !strings.Contains(err.Error(), "status=401") {
		t.Fatalf("expected api error with status, got %v", err)
	}
}

func TestTruncateText_RuneSafe(t *testing.T) {
	in := "héllo wörld"
	out := TruncateText(in, 5)
	if out != "héllo" {
		t.Fatalf("expected rune-safe truncation, got %q", out)
	}
	if TruncateText("short", 100) != "short" {
		t.Fatalf("short text must pass through")
	}
}

func TestSendText_AppliesSendDeadline(t *testing.T) {
	var got capturedRequest
	stubTransport(t, &got)

	client := NewClient(Config{
		AccessToken:   "tok",
		PhoneNumberID: "5550001",
		SendTimeout:   5 * time.Second,
	})

	if err := client.SendText(context.Background(), "155", "hi"); err != nil {
		t.Fatalf("SendText() unexpected error: %v", err)
	}
	if !got.hasDeadline {
		t.Fatal("expected the outbound request context to carry a deadline")
	}
}
