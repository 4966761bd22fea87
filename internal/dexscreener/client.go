package dexscreener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chainwatch/internal/domain"
)

// Default configuration values.
const (
	DefaultBaseURL      = "https://api.dexscreener.com"
	DefaultStageTimeout = 10 * time.Second
)

// ErrNotFound is returned when neither lookup stage yields a pair.
var ErrNotFound = errors.New("not found on dexscreener")

// Client queries the public DexScreener API to verify that a detected
// address trades somewhere, and to resolve it to the canonical token
// address (the detected address may be a pool/pair address).
type Client struct {
	baseURL      string
	client       *http.Client
	stageTimeout time.Duration
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithStageTimeout sets the per-stage request timeout.
func WithStageTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.stageTimeout = d
	}
}

// NewClient creates a new DexScreener client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		client:       &http.Client{},
		stageTimeout: DefaultStageTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup resolves (chain, address) to the canonical base-token address.
// Two stages, each with its own bounded timeout: the pairs endpoint first
// (aggregator links usually carry pair addresses), then the tokens
// endpoint filtered by chain. A failed stage falls through to the next;
// no retries beyond the fallback. The returned error distinguishes
// not-found from transport trouble only in its text; callers branch on
// err != nil.
func (c *Client) Lookup(ctx context.Context, chain domain.Chain, address string) (string, error) {
	token, pairsErr := c.tryPairs(ctx, chain, address)
	if pairsErr == nil {
		return token, nil
	}

	token, tokensErr := c.tryTokens(ctx, chain, address)
	if tokensErr == nil {
		return token, nil
	}

	return "", fmt.Errorf("%w: pairs: %v; tokens: %v", ErrNotFound, pairsErr, tokensErr)
}

func (c *Client) tryPairs(ctx context.Context, chain domain.Chain, address string) (string, error) {
	url := fmt.Sprintf("%s/latest/dex/pairs/%s/%s", c.baseURL, chain, address)

	var resp pairsResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return "", err
	}
	if len(resp.Pairs) == 0 {
		return "", errors.New("no pairs found")
	}

	addr := resp.Pairs[0].BaseToken.Address
	if addr == "" {
		return "", errors.New("no token address in pair data")
	}
	return addr, nil
}

func (c *Client) tryTokens(ctx context.Context, chain domain.Chain, address string) (string, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, address)

	var resp pairsResponse
	if err := c.get(ctx, url, &resp); err != nil {
		return "", err
	}
	if len(resp.Pairs) == 0 {
		return "", errors.New("no pairs found for token")
	}

	// The tokens endpoint is chain-agnostic; keep only pairs on our chain.
	for _, p := range resp.Pairs {
		if !strings.EqualFold(p.ChainID, string(chain)) {
			continue
		}
		if p.BaseToken.Address == "" {
			return "", errors.New("no token address in pair data")
		}
		return p.BaseToken.Address, nil
	}
	return "", fmt.Errorf("no pairs on %s", chain)
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.stageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// pairsResponse is the shared shape of the pairs and tokens endpoints.
type pairsResponse struct {
	Pairs []pairData `json:"pairs"`
}

type pairData struct {
	ChainID   string    `json:"chainId"`
	BaseToken tokenInfo `json:"baseToken"`
}

type tokenInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}
