// Package branch resolves IFSC codes to branch names through an injected
// lookup service and caches the answers for the life of the process.
package branch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// Lookup fetches the branch name for one IFSC code.
type Lookup interface {
	Branch(ctx context.Context, code string) (string, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, code string) (string, error)

func (f LookupFunc) Branch(ctx context.Context, code string) (string, error) {
	return f(ctx, code)
}

// DefaultServiceURL is the public IFSC directory.
const DefaultServiceURL = "https://ifsc.razorpay.com"

// HTTPLookup queries an IFSC directory at GET {base}/{code}, which answers
// with a JSON object carrying BRANCH.
type HTTPLookup struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter
}

// HTTPOption configures an HTTPLookup.
type HTTPOption func(*HTTPLookup)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(l *HTTPLookup) {
		l.client = c
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(perSecond float64, burst int) HTTPOption {
	return func(l *HTTPLookup) {
		if perSecond <= 0 {
			l.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewHTTPLookup returns a lookup against base (DefaultServiceURL when empty).
func NewHTTPLookup(base string, opts ...HTTPOption) *HTTPLookup {
	if base == "" {
		base = DefaultServiceURL
	}
	l := &HTTPLookup{
		base:    strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(20), 5),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Branch implements Lookup.
func (l *HTTPLookup) Branch(ctx context.Context, code string) (string, error) {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.base+"/"+url.PathEscape(code), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("ifsc lookup %s: status %d", code, resp.StatusCode)
	}
	var body struct {
		Branch string `json:"BRANCH"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("ifsc lookup %s: %w", code, err)
	}
	return body.Branch, nil
}
