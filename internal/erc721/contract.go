// Package erc721 binds the three read-only methods of an enumerable ERC-721
// collection needed to list a wallet's tokens.
package erc721

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// MinimalABI describes balanceOf, tokenURI and tokenOfOwnerByIndex.
const MinimalABI = `[
  {"inputs":[{"internalType":"address","name":"owner","type":"address"}],
   "name":"balanceOf",
   "outputs":[{"internalType":"uint256","name":"","type":"uint256"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],
   "name":"tokenURI",
   "outputs":[{"internalType":"string","name":"","type":"string"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"owner","type":"address"},{"internalType":"uint256","name":"index","type":"uint256"}],
   "name":"tokenOfOwnerByIndex",
   "outputs":[{"internalType":"uint256","name":"","type":"uint256"}],
   "stateMutability":"view","type":"function"}
]`

const (
	MethodBalanceOf           = "balanceOf"
	MethodTokenURI            = "tokenURI"
	MethodTokenOfOwnerByIndex = "tokenOfOwnerByIndex"
)

// Caller executes a read-only call and returns the raw return data.
// *rpc.Client satisfies it.
type Caller interface {
	EthCall(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Contract is a read-only binding to one collection address.
type Contract struct {
	address common.Address
	abi     abi.ABI
	caller  Caller
}

// ParseABI parses MinimalABI.
func ParseABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(MinimalABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}
	return parsed, nil
}

// New binds the collection at addr.
func New(addr common.Address, caller Caller) (*Contract, error) {
	parsed, err := ParseABI()
	if err != nil {
		return nil, err
	}
	return &Contract{address: addr, abi: parsed, caller: caller}, nil
}

func (c *Contract) Address() common.Address { return c.address }

// BalanceOf returns the number of tokens held by owner.
func (c *Contract) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, MethodBalanceOf, owner)
	if err != nil {
		return nil, err
	}
	return asBigInt(MethodBalanceOf, out)
}

// TokenOfOwnerByIndex returns the id of owner's index-th token. The order is
// whatever the contract enumerates.
func (c *Contract) TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error) {
	out, err := c.call(ctx, MethodTokenOfOwnerByIndex, owner, index)
	if err != nil {
		return nil, err
	}
	return asBigInt(MethodTokenOfOwnerByIndex, out)
}

// TokenURI returns the metadata URI of tokenID.
func (c *Contract) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	out, err := c.call(ctx, MethodTokenURI, tokenID)
	if err != nil {
		return "", err
	}
	if len(out) != 1 {
		return "", fmt.Errorf("call %s: unexpected outputs: %d", MethodTokenURI, len(out))
	}
	uri, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("call %s: output is %T, not string", MethodTokenURI, out[0])
	}
	return uri, nil
}

func (c *Contract) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	raw, err := c.caller.EthCall(ctx, c.address, data)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("call %s: empty return data (is %s an enumerable ERC-721 contract?)", method, c.address.Hex())
	}

	out, err := c.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

func asBigInt(method string, out []interface{}) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("call %s: unexpected outputs: %d", method, len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("call %s: output is %T, not uint256", method, out[0])
	}
	return v, nil
}
