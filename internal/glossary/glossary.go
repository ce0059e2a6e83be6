// Package glossary queries the external legal term-definition service.
//
// The service is a best-effort collaborator: any transport or decode
// failure is reported as a plain miss, never as an error. Callers that
// need a definition badly enough to fail should not exist.
package glossary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/demystifier/demystifier/internal/log"
)

// lookupPath is the tool endpoint on the definition service.
const lookupPath = "/tools/get_legal_term_definition"

// defaultTimeout bounds a lookup; the bypass must never stall a chat
// exchange for long.
const defaultTimeout = 10 * time.Second

// Client queries the term-definition service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     log.Logger
}

// Config contains the parameters for the glossary client.
type Config struct {
	// BaseURL is the service root, e.g. "https://glossary.example.com".
	BaseURL string

	// HTTPClient optionally overrides the transport. nil uses a client
	// with the default timeout.
	HTTPClient *http.Client

	Logger log.Logger
}

// NewClient creates a glossary client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type lookupRequest struct {
	Term string `json:"term"`
}

type lookupResponse struct {
	Definition string `json:"definition"`
}

// Lookup returns the definition for a term and true on a hit.
// Every failure mode — transport error, non-200 status, malformed body,
// empty definition — is a miss.
func (c *Client) Lookup(ctx context.Context, term string) (string, bool) {
	body, err := json.Marshal(lookupRequest{Term: term})
	if err != nil {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+lookupPath, bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("glossary lookup failed", "term", term, "error", err)
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("glossary lookup rejected", "term", term, "status", resp.StatusCode)
		return "", false
	}

	var out lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Debug("glossary response malformed", "term", term, "error", err)
		return "", false
	}
	if out.Definition == "" {
		return "", false
	}
	return out.Definition, true
}
