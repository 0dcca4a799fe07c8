package webfetch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/promptkit/providers/tool"
)

func htmlServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

// TestFetch_Success tests successful web page fetching and conversion
func TestFetch_Success(t *testing.T) {
	server := htmlServer(t, `
<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Welcome</h1>
	<p>This is a <strong>test</strong> paragraph.</p>
	<ul>
		<li>Item 1</li>
		<li>Item 2</li>
	</ul>
</body>
</html>`)

	output, err := New().Fetch(context.Background(), Input{URL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if output.URL != server.URL {
		t.Errorf("Expected URL %s, got %s", server.URL, output.URL)
	}
	if !strings.Contains(output.Markdown, "# Welcome") {
		t.Errorf("Markdown should contain the heading, got %q", output.Markdown)
	}
	if !strings.Contains(output.Markdown, "**test**") {
		t.Errorf("Markdown should keep emphasis, got %q", output.Markdown)
	}
}

func TestFetch_EmptyURL(t *testing.T) {
	for _, url := range []string{"", "   "} {
		_, err := New().Fetch(context.Background(), Input{URL: url})
		if err == nil || !strings.Contains(err.Error(), "URL cannot be empty") {
			t.Errorf("Fetch(%q) error = %v", url, err)
		}
	}
}

func TestFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New().Fetch(context.Background(), Input{URL: server.URL})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestFetch_Truncates(t *testing.T) {
	server := htmlServer(t, "<p>"+strings.Repeat("a", 500)+"</p>")

	output, err := New().Fetch(context.Background(), Input{URL: server.URL, MaxChars: 100})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.HasPrefix(output.Markdown, strings.Repeat("a", 100)+"...") {
		t.Errorf("expected truncated markdown, got %q", output.Markdown)
	}
	if !strings.Contains(output.Markdown, "total: 500 chars") {
		t.Errorf("expected truncation marker, got %q", output.Markdown)
	}
}

func TestFetch_Redirect(t *testing.T) {
	final := htmlServer(t, "<html><body><h1>Final Page</h1></body></html>")
	redirect := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusMovedPermanently)
	}))
	defer redirect.Close()

	output, err := New().Fetch(context.Background(), Input{URL: redirect.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if output.URL != final.URL {
		t.Errorf("Expected final URL %s, got %s", final.URL, output.URL)
	}
	if !strings.Contains(output.Markdown, "Final Page") {
		t.Error("Expected content from final redirected page")
	}
}

func TestFetch_TooManyRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.String(), http.StatusFound)
	}))
	defer server.Close()

	_, err := New().Fetch(context.Background(), Input{URL: server.URL})
	if err == nil || !strings.Contains(err.Error(), "redirect") {
		t.Errorf("expected redirect error, got %v", err)
	}
}

func TestFetch_LargeResponse(t *testing.T) {
	server := htmlServer(t, strings.Repeat("<p>Large content</p>", MaxBodySize/20+10))

	_, err := New().Fetch(context.Background(), Input{URL: server.URL})
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum size") {
		t.Errorf("expected max size error, got %v", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(3 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := New().Fetch(ctx, Input{URL: server.URL})
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		seconds int
		want    time.Duration
	}{
		{0, DefaultTimeout},
		{-5, DefaultTimeout},
		{10, 10 * time.Second},
		{120, MaxTimeout},
		{121, MaxTimeout},
		{math.MaxInt, MaxTimeout},
	}
	for _, tt := range tests {
		if got := requestTimeout(tt.seconds); got != tt.want {
			t.Errorf("requestTimeout(%d) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestFetch_HugeTimeout(t *testing.T) {
	server := htmlServer(t, "<p>still here</p>")

	output, err := New().Fetch(context.Background(), Input{URL: server.URL, TimeoutSeconds: math.MaxInt})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !strings.Contains(output.Markdown, "still here") {
		t.Errorf("Markdown = %q", output.Markdown)
	}
}

func TestFetch_UserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<p>ok</p>")
	}))
	defer server.Close()

	if _, err := New(WithUserAgent("recipe-bot/2.0")).Fetch(context.Background(), Input{URL: server.URL}); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got != "recipe-bot/2.0" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestTool_ResolveAndCall(t *testing.T) {
	server := htmlServer(t, "<h2>Apple pie</h2>")
	spec := New(WithHTTPClient(server.Client())).Tool()

	if spec.Name != Name {
		t.Errorf("Name = %q", spec.Name)
	}
	if spec.Description != "Fetch a web page and return its content as Markdown." {
		t.Errorf("Description = %q", spec.Description)
	}

	schema := spec.Schema()
	if len(schema.Required) != 1 || schema.Required[0] != "url" {
		t.Errorf("Required = %v", schema.Required)
	}
	if schema.Properties["max_chars"].Default != int64(DefaultMaxChars) {
		t.Errorf("max_chars default = %#v", schema.Properties["max_chars"].Default)
	}

	call, err := tool.Resolve([]*tool.ToolSpec{spec}, "call_1", Name, fmt.Sprintf(`{"url": %q}`, server.URL))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	result, err := call.Call(context.Background())
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	output, ok := result.(Output)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if !strings.Contains(output.Markdown, "## Apple pie") {
		t.Errorf("Markdown = %q", output.Markdown)
	}
}
