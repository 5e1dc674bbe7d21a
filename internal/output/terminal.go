package output

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dmagro/eth-nft-lookup/internal/lookup"
	"github.com/dmagro/eth-nft-lookup/internal/metadata"
)

// Terminal prints the report line by line as results arrive.
type Terminal struct {
	w io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Connected(network string, chainID uint64, latency time.Duration) {
	fmt.Fprintf(t.w, "%s %s\n", dim(fmt.Sprintf("Connected to %s (chain %d) in", network, chainID)), colorLatency(latency.Milliseconds()))
}

func (t *Terminal) Balance(owner common.Address, balance uint64) {
	fmt.Fprintln(t.w)
	fmt.Fprintf(t.w, "%s %s\n", cyan("NFT balance in wallet:"), bold(balance))

	if balance == 0 {
		fmt.Fprintln(t.w, yellow("This wallet does not own any NFTs in this collection."))
		return
	}

	fmt.Fprintln(t.w)
	fmt.Fprintln(t.w, "Fetching NFT details...")
}

func (t *Terminal) Token(r lookup.TokenResult) {
	fmt.Fprintln(t.w)

	if !r.OK() {
		fmt.Fprintf(t.w, "%s %v\n", red(fmt.Sprintf("Error fetching NFT #%d:", r.Ordinal)), r.Err)
		return
	}

	fmt.Fprintln(t.w, bold(fmt.Sprintf("NFT #%d:", r.Ordinal)))
	fmt.Fprintf(t.w, "%s %s\n", cyan("Token ID:"), r.TokenID)
	if r.Metadata == nil {
		fmt.Fprintf(t.w, "%s %s\n", cyan("Metadata:"), yellow("unavailable"))
	}
	fmt.Fprintf(t.w, "%s %s\n", cyan("Name:"), field(r.Metadata, "name", NoName))
	fmt.Fprintf(t.w, "%s %s\n", cyan("Description:"), field(r.Metadata, "description", NoDescription))
	fmt.Fprintf(t.w, "%s %s\n", cyan("Image:"), field(r.Metadata, "image", NoImage))
}

func (t *Terminal) Failure(err error) {
	fmt.Fprintln(t.w, red(failureMessage(err)))
	if errors.Is(err, lookup.ErrNotConnected) || errors.Is(err, lookup.ErrInvalidAddress) {
		fmt.Fprintln(t.w, dim(err.Error()))
	}
}

func (t *Terminal) Flush() error { return nil }

// field returns md[key] or placeholder when missing.
func field(md metadata.Metadata, key, placeholder string) string {
	if v, ok := md.Field(key); ok {
		return v
	}
	return dim(placeholder)
}
