package datasource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vanderheijden86/fundtrail/pkg/debug"
	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// RequestIDHeader carries a per-request id the server echoes in its logs.
const RequestIDHeader = "X-Request-ID"

// maxBody bounds response bodies read from the server.
const maxBody = 64 << 20

// HTTPSource talks to the fund-trail server.
type HTTPSource struct {
	base   string
	client *http.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithClient replaces the default HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = c
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// NewHTTPSource returns a source for the server at base.
func NewHTTPSource(base string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPSource) Close() error { return nil }

func (s *HTTPSource) do(ctx context.Context, op, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	debug.Log("%s %s -> %d in %v (request %s)", method, path, resp.StatusCode, time.Since(start), id)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op, Code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s: reading body: %w", op, err)
	}
	return data, nil
}

// Graph implements Source.
func (s *HTTPSource) Graph(ctx context.Context, ack string) (*trail.Document, error) {
	data, err := s.do(ctx, "graph_data", http.MethodGet, "/graph_data/"+url.PathEscape(strings.TrimSpace(ack)), nil)
	if err != nil {
		return nil, err
	}
	doc, err := trail.DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	return checkDocument(doc)
}

// Holds implements Source.
func (s *HTTPSource) Holds(ctx context.Context, ack string) ([]model.HoldRow, error) {
	data, err := s.do(ctx, "put_on_hold_transactions", http.MethodGet, "/put_on_hold_transactions/"+url.PathEscape(strings.TrimSpace(ack)), nil)
	if err != nil {
		return nil, err
	}
	var rows []model.HoldRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("put_on_hold_transactions: decoding rows: %w", err)
	}
	return rows, nil
}

// SaveKYC implements Source.
func (s *HTTPSource) SaveKYC(ctx context.Context, req model.KYCUpdate) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	data, err := s.do(ctx, "save_kyc", http.MethodPost, "/save_kyc", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	var result model.KYCResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("save_kyc: decoding result: %w", err)
	}
	if result.Status != model.KYCStatusSuccess {
		return &KYCError{Message: result.Message}
	}
	return nil
}

// AckNumbers lists the acknowledgement numbers the server knows about.
func (s *HTTPSource) AckNumbers(ctx context.Context) ([]string, error) {
	data, err := s.do(ctx, "available_ack_nos", http.MethodGet, "/available_ack_nos", nil)
	if err != nil {
		return nil, err
	}
	var body struct {
		AckNos []string `json:"available_ack_nos"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("available_ack_nos: %w", err)
	}
	return body.AckNos, nil
}
