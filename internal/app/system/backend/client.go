// internal/app/system/backend/client.go

// Package backend is the HTTP client for the dApp's backend API, which hands
// out the deployed contract addresses and mints tokens on request.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/tokenvote/internal/app/system/metrics"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// maxBody bounds how much of a response body is read.
const maxBody = 1 << 20

// ErrBadAddress is returned when the backend answers with something that is
// not a hex address.
var ErrBadAddress = errors.New("backend returned an invalid address")

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: backend status %d: %s", e.Op, e.Code, e.Body)
}

// Paths are the endpoint paths relative to the base URL.
type Paths struct {
	TokenAddress  string
	BallotAddress string
	RequestTokens string
}

// DefaultPaths returns the paths the stock backend serves.
func DefaultPaths() Paths {
	return Paths{
		TokenAddress:  "/token-address",
		BallotAddress: "/ballot-address",
		RequestTokens: "/request-tokens",
	}
}

// MintReceipt is the backend's answer to a mint request.
type MintReceipt struct {
	Amount float64 `json:"amount"`
	TxHash string  `json:"txHash"`
}

type addressResponse struct {
	Address string `json:"address"`
}

type mintRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// Client talks to one backend.
type Client struct {
	base  string
	paths Paths
	http  *http.Client
	log   *zap.Logger
}

// New creates a client for baseURL. Empty paths fall back to DefaultPaths.
// A nil httpClient uses http.DefaultClient; per-call deadlines come from ctx.
func New(baseURL string, paths Paths, httpClient *http.Client, logger *zap.Logger) *Client {
	def := DefaultPaths()
	if paths.TokenAddress == "" {
		paths.TokenAddress = def.TokenAddress
	}
	if paths.BallotAddress == "" {
		paths.BallotAddress = def.BallotAddress
	}
	if paths.RequestTokens == "" {
		paths.RequestTokens = def.RequestTokens
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		paths: paths,
		http:  httpClient,
		log:   logger,
	}
}

// TokenAddress asks the backend where the token contract lives.
func (c *Client) TokenAddress(ctx context.Context) (common.Address, error) {
	return c.address(ctx, "token_address", c.paths.TokenAddress)
}

// BallotAddress asks the backend where the ballot contract lives.
func (c *Client) BallotAddress(ctx context.Context) (common.Address, error) {
	return c.address(ctx, "ballot_address", c.paths.BallotAddress)
}

func (c *Client) address(ctx context.Context, op, path string) (common.Address, error) {
	var out addressResponse
	err := c.do(ctx, op, http.MethodGet, path, nil, &out)
	if err == nil && !common.IsHexAddress(out.Address) {
		err = fmt.Errorf("%s: %w: %q", op, ErrBadAddress, out.Address)
	}
	metrics.BackendCall(op, err)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(out.Address), nil
}

// RequestTokens asks the backend to mint amount tokens to addr. The request
// is sent once and never retried.
func (c *Client) RequestTokens(ctx context.Context, addr common.Address, amount string) (*MintReceipt, error) {
	body := mintRequest{Address: addr.Hex(), Amount: amount}
	var out MintReceipt
	err := c.do(ctx, "request_tokens", http.MethodPost, c.paths.RequestTokens, body, &out)
	metrics.BackendCall("request_tokens", err)
	if err != nil {
		return nil, err
	}
	c.log.Info("tokens requested",
		zap.String("address", body.Address),
		zap.String("amount", amount),
		zap.String("tx_hash", out.TxHash))
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend request failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("backend returned error status",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
