package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dmagro/eth-nft-lookup/internal/lookup"
	"github.com/dmagro/eth-nft-lookup/internal/metadata"
)

// JSONReport is the document written by the json format.
type JSONReport struct {
	Network   string      `json:"network,omitempty"`
	ChainID   uint64      `json:"chainId,omitempty"`
	LatencyMs int64       `json:"latencyMs,omitempty"`
	Owner     string      `json:"owner,omitempty"`
	Balance   *uint64     `json:"balance,omitempty"`
	Tokens    []JSONToken `json:"tokens"`
	Error     string      `json:"error,omitempty"`
}

// JSONToken is one entry of JSONReport.Tokens. Metadata is null when the
// document could not be fetched.
type JSONToken struct {
	Ordinal    uint64            `json:"ordinal"`
	Index      uint64            `json:"index"`
	TokenID    string            `json:"tokenId,omitempty"`
	URI        string            `json:"uri,omitempty"`
	Metadata   metadata.Metadata `json:"metadata"`
	FailedStep string            `json:"failedStep,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// JSON buffers the whole lookup and writes a single document on Flush.
type JSON struct {
	w      io.Writer
	report JSONReport
}

func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w, report: JSONReport{Tokens: []JSONToken{}}}
}

func (j *JSON) Connected(network string, chainID uint64, latency time.Duration) {
	j.report.Network = network
	j.report.ChainID = chainID
	j.report.LatencyMs = latency.Milliseconds()
}

func (j *JSON) Balance(owner common.Address, balance uint64) {
	j.report.Owner = owner.Hex()
	j.report.Balance = &balance
}

func (j *JSON) Token(r lookup.TokenResult) {
	t := JSONToken{
		Ordinal:  r.Ordinal,
		Index:    r.Index,
		URI:      r.URI,
		Metadata: r.Metadata,
	}
	if r.TokenID != nil {
		t.TokenID = r.TokenID.String()
	}
	if !r.OK() {
		t.FailedStep = r.Step
		t.Error = r.Err.Error()
	}
	j.report.Tokens = append(j.report.Tokens, t)
}

func (j *JSON) Failure(err error) {
	j.report.Error = err.Error()
}

func (j *JSON) Flush() error {
	encoder := json.NewEncoder(j.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(j.report)
}

// Report returns the document built so far.
func (j *JSON) Report() JSONReport { return j.report }
