package webfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/promptkit/internal/utils"
	"github.com/leofalp/promptkit/providers/tool"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// MaxTimeout caps the timeout a call may request
	MaxTimeout = 120 * time.Second
	// DefaultUserAgent is the User-Agent header sent with every request
	DefaultUserAgent = "promptkit-webfetch/1.0"
	// DefaultMaxChars caps the Markdown returned to the model
	DefaultMaxChars = 20000
	// MaxBodySize is the maximum response body size (10MB)
	MaxBodySize = 10 * 1024 * 1024
	// MaxRedirects is the number of redirects followed before giving up
	MaxRedirects = 10
)

// Name is the tool name the model calls.
const Name = "fetch_page"

const doc = `
	Fetch a web page and return its content as Markdown.

	Args:
	    url: The URL of the page. Partial URLs like "example.com" get an
	        https:// prefix.
	    max_chars: Maximum number of Markdown characters to return.
	    timeout_seconds: Request timeout in seconds, at most 120.

	Returns:
	    The final URL after redirects and the page content as Markdown.
`

// Input holds the arguments of a fetch_page call.
type Input struct {
	URL            string `json:"url"`
	MaxChars       int    `json:"max_chars" default:"20000"`
	TimeoutSeconds int    `json:"timeout_seconds" default:"30"`
}

// Output is returned to the model.
type Output struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

// Fetcher fetches pages with a configurable HTTP client.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		f.userAgent = userAgent
	}
}

// New creates a Fetcher. Without WithHTTPClient it uses a client with dial,
// TLS and header timeouts that follows at most MaxRedirects redirects.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				ForceAttemptHTTP2:     true,
			},
			CheckRedirect: checkRedirect,
		}
	}
	return f
}

// requestTimeout converts a requested timeout to a duration, falling back to
// DefaultTimeout when unset and clamping to MaxTimeout.
func requestTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return DefaultTimeout
	}
	if seconds >= int(MaxTimeout/time.Second) {
		return MaxTimeout
	}
	return time.Duration(seconds) * time.Second
}

func checkRedirect(_ *http.Request, via []*http.Request) error {
	if len(via) >= MaxRedirects {
		return fmt.Errorf("too many redirects (>%d)", MaxRedirects)
	}
	return nil
}

// Tool returns the fetch_page tool spec bound to f.
func (f *Fetcher) Tool() *tool.ToolSpec {
	return tool.MustFunction(Name, doc, f.Fetch)
}

// NewTool returns the fetch_page tool spec using a default Fetcher.
func NewTool() *tool.ToolSpec {
	return New().Tool()
}

// Fetch retrieves the page at in.URL and converts it to Markdown, truncated
// to in.MaxChars characters.
func (f *Fetcher) Fetch(ctx context.Context, in Input) (Output, error) {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return Output{}, errors.New("URL cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout(in.TimeoutSeconds))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Output{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Output{}, fmt.Errorf("request timeout or canceled: %w", err)
		}
		return Output{}, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return Output{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxBodySize {
		return Output{}, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return Output{}, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	maxChars := in.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return Output{
		URL:      resp.Request.URL.String(),
		Markdown: utils.TruncateString(markdown, maxChars),
	}, nil
}
