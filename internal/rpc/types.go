// Package rpc is a minimal Ethereum JSON-RPC 2.0 client over HTTP. It covers
// exactly what a read-only lookup needs: a chain id round trip to prove the
// endpoint is reachable, and eth_call for view methods.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Request is a JSON-RPC 2.0 request.
//
//	{"jsonrpc": "2.0", "method": "eth_chainId", "params": [], "id": 1}
//
// Params is a slice of empty interfaces because each method takes different
// argument shapes (eth_call takes a call object and a block tag).
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// Response is a JSON-RPC 2.0 response. Result stays raw until the caller,
// who knows the expected shape, decodes it. Error is nil on success.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an error object returned by the node.
//
// Standard codes: -32700 parse error, -32600 invalid request, -32601 method
// not found, -32602 invalid params, -32603 internal error. Nodes use 3 or
// -32000 for reverted calls, in which case Data may carry the revert payload.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// CallMsg is the call object for eth_call. Only the fields a view call needs
// are present.
type CallMsg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}
