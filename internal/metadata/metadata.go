// Package metadata fetches the off-chain JSON document a token URI points to.
package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// IPFSScheme is rewritten to the configured HTTP gateway before fetching.
const IPFSScheme = "ipfs://"

// DefaultGateway is the public gateway used when none is configured.
const DefaultGateway = "https://ipfs.io/ipfs/"

// Metadata is an arbitrary JSON object. Only name, description and image are
// read, and each may be missing.
type Metadata map[string]interface{}

// Field returns the value stored under key. Missing keys, JSON null and empty
// strings report ok=false. Non-string values are returned as compact JSON.
func (m Metadata) Field(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		if val == "" {
			return "", false
		}
		return val, true
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val), true
		}
		return string(b), true
	}
}

// GatewayURL maps uri to the URL that is actually fetched. ipfs://<path>
// becomes <gateway><path>; every other URI is returned unchanged.
func GatewayURL(uri, gateway string) string {
	rest, ok := strings.CutPrefix(uri, IPFSScheme)
	if !ok {
		return uri
	}
	if gateway == "" {
		gateway = DefaultGateway
	}
	return strings.TrimSuffix(gateway, "/") + "/" + rest
}
