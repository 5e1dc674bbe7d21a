package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Client talks to one JSON-RPC endpoint. Every call is a single blocking
// HTTP round trip; there is no retry.
type Client struct {
	name       string
	url        string
	host       string // endpoint without path, safe to print
	httpClient *http.Client
}

// NewClient returns a client for url. A zero timeout keeps the HTTP client's
// default (no deadline beyond the context's).
func NewClient(name, rawURL string, timeout time.Duration) *Client {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Scheme + "://" + u.Host
	}
	return &Client{
		name:       name,
		url:        rawURL,
		host:       host,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return c.name }

// Call executes one JSON-RPC request and returns the decoded envelope along
// with the round-trip latency.
func (c *Client) Call(ctx context.Context, method string, params ...interface{}) (*Response, time.Duration, error) {
	if params == nil {
		params = []interface{}{}
	}

	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	start := time.Now()
	resp, err := c.doRequest(ctx, body)
	latency := time.Since(start)
	if err != nil {
		return nil, latency, fmt.Errorf("%s: %w", method, err)
	}
	return resp, latency, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, c.redact(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.redact(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", httpResp.StatusCode, c.host)
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	return &resp, nil
}

// redact replaces the endpoint URL in transport errors so the API key embedded
// in the path never reaches the terminal.
func (c *Client) redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: c.host, Err: uerr.Err}
	}
	return err
}

// ChainID calls eth_chainId.
func (c *Client) ChainID(ctx context.Context) (uint64, time.Duration, error) {
	resp, latency, err := c.Call(ctx, "eth_chainId")
	if err != nil {
		return 0, latency, err
	}

	var hexStr string
	if err := json.Unmarshal(resp.Result, &hexStr); err != nil {
		return 0, latency, fmt.Errorf("failed to parse chain id: %w", err)
	}

	id, err := hexutil.DecodeUint64(hexStr)
	if err != nil {
		return 0, latency, fmt.Errorf("failed to parse chain id %q: %w", hexStr, err)
	}
	return id, latency, nil
}

// IsConnected reports whether the endpoint answers an eth_chainId round trip.
func (c *Client) IsConnected(ctx context.Context) bool {
	_, _, err := c.ChainID(ctx)
	return err == nil
}

// EthCall executes a read-only call against the latest block and returns the
// raw return data.
func (c *Client) EthCall(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	msg := CallMsg{
		To:   to.Hex(),
		Data: hexutil.Encode(data),
	}

	resp, _, err := c.Call(ctx, "eth_call", msg, "latest")
	if err != nil {
		return nil, err
	}

	var hexStr string
	if err := json.Unmarshal(resp.Result, &hexStr); err != nil {
		return nil, fmt.Errorf("failed to parse eth_call result: %w", err)
	}

	out, err := hexutil.Decode(hexStr)
	if err != nil {
		// Some nodes answer "0x" for calls to accounts without code.
		if hexStr == "0x" || hexStr == "" {
			return []byte{}, nil
		}
		return nil, fmt.Errorf("failed to decode eth_call result: %w", err)
	}
	return out, nil
}
