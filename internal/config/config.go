// Package config provides YAML configuration loading and validation.
// Built-in defaults point at Base mainnet through Alchemy and pull the API key
// and the collection address from the environment; an optional YAML file can
// override any of them.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// ErrMissing is returned by Validate when a required setting is empty.
var ErrMissing = errors.New("missing required setting")

// APIKeyPlaceholder is substituted with the API key in Network.RPCURL.
const APIKeyPlaceholder = "{api_key}"

const defaultYAML = `
api_key: ${ALCHEMY_API_KEY}
contract_address: ${NFT_CONTRACT_ADDRESS}
rpc_timeout: 0s
network:
  name: base
  rpc_url: https://base-mainnet.g.alchemy.com/v2/{api_key}
  chain_id: 8453
metadata:
  gateway: https://ipfs.io/ipfs/
  timeout: 0s
`

// Config is the root configuration structure. It is built once at startup
// and passed to every component that needs it.
type Config struct {
	APIKey          string        `yaml:"api_key"`          // Node access credential
	ContractAddress string        `yaml:"contract_address"` // ERC-721 collection address
	RPCTimeout      time.Duration `yaml:"rpc_timeout"`      // 0 = HTTP client default
	Network         Network       `yaml:"network"`
	Metadata        Metadata      `yaml:"metadata"`
}

// Network describes the chain endpoint.
type Network struct {
	Name    string `yaml:"name"`
	RPCURL  string `yaml:"rpc_url"`  // May contain {api_key}
	ChainID uint64 `yaml:"chain_id"` // Expected chain id; 0 disables the check
}

// Metadata configures the token metadata fetcher.
type Metadata struct {
	Gateway string        `yaml:"gateway"` // HTTP base that replaces ipfs://
	Timeout time.Duration `yaml:"timeout"` // 0 = HTTP client default
}

// Default returns the built-in configuration with ${VAR} references expanded
// from the current environment.
func Default() (*Config, error) {
	var cfg Config
	if err := decode(strings.NewReader(defaultYAML), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}
	return &cfg, nil
}

// Load returns the built-in defaults overlaid with the YAML file at path.
// An empty path, or a path that does not exist, yields the defaults alone.
// Values in the file may reference environment variables with ${VAR}.
//
// Load does not validate; call Validate before using the result.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	defer f.Close()

	if err := decode(f, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	expanded := os.ExpandEnv(string(data))
	return yaml.Unmarshal([]byte(expanded), cfg)
}

// RPCURL returns the node endpoint with the API key filled in.
func (c *Config) RPCURL() string {
	return strings.ReplaceAll(c.Network.RPCURL, APIKeyPlaceholder, c.APIKey)
}

// Validate checks that every setting needed for a run is present and well
// formed. Warnings for suspicious values are written to stderr.
func (c *Config) Validate() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.ContractAddress = strings.TrimSpace(c.ContractAddress)

	if c.APIKey == "" && strings.Contains(c.Network.RPCURL, APIKeyPlaceholder) {
		return fmt.Errorf("%w: api key (set ALCHEMY_API_KEY)", ErrMissing)
	}
	if c.ContractAddress == "" {
		return fmt.Errorf("%w: contract address (set NFT_CONTRACT_ADDRESS)", ErrMissing)
	}
	if !common.IsHexAddress(c.ContractAddress) || !strings.HasPrefix(strings.ToLower(c.ContractAddress), "0x") {
		return fmt.Errorf("invalid contract address %q: expected 0x followed by 40 hex chars", c.ContractAddress)
	}
	if c.Network.Name == "" {
		return fmt.Errorf("%w: network.name", ErrMissing)
	}
	if err := validateHTTPURL("network.rpc_url", c.RPCURL()); err != nil {
		return err
	}
	if err := validateHTTPURL("metadata.gateway", c.Metadata.Gateway); err != nil {
		return err
	}
	if c.RPCTimeout < 0 {
		return fmt.Errorf("rpc_timeout must be >= 0")
	}
	if c.Metadata.Timeout < 0 {
		return fmt.Errorf("metadata.timeout must be >= 0")
	}

	warnTimeout := func(scope string, d time.Duration) {
		const low = 500 * time.Millisecond
		if d > 0 && d < low {
			fmt.Fprintf(os.Stderr, "Warning: %s is very low (%s); requests may fail under normal network jitter\n", scope, d)
		}
	}
	warnTimeout("rpc_timeout", c.RPCTimeout)
	warnTimeout("metadata.timeout", c.Metadata.Timeout)

	return nil
}

func validateHTTPURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: %s", ErrMissing, field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", field, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s: invalid url (missing scheme or host)", field)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: invalid url scheme %q (expected http or https)", field, u.Scheme)
	}
	return nil
}
