package lookup

import (
	"math/big"

	"github.com/dmagro/eth-nft-lookup/internal/metadata"
)

// Pipeline steps that can fail for a single token.
const (
	StepTokenID  = "tokenOfOwnerByIndex"
	StepTokenURI = "tokenURI"
)

// TokenResult is the outcome for one owned token. Err == nil means the token
// id and URI were read; Metadata may still be nil when the document could not
// be fetched or parsed.
type TokenResult struct {
	Ordinal  uint64 // 1-based position shown to the user
	Index    uint64 // index passed to tokenOfOwnerByIndex
	TokenID  *big.Int
	URI      string
	Metadata metadata.Metadata

	Step string // failed step, empty on success
	Err  error
}

func (r TokenResult) OK() bool { return r.Err == nil }

func (r TokenResult) fail(step string, err error) TokenResult {
	r.Step = step
	r.Err = err
	return r
}
