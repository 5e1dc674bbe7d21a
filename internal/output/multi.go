package output

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dmagro/eth-nft-lookup/internal/lookup"
)

// Multi forwards every event to each reporter in order.
type Multi []lookup.Reporter

func (m Multi) Connected(network string, chainID uint64, latency time.Duration) {
	for _, r := range m {
		r.Connected(network, chainID, latency)
	}
}

func (m Multi) Balance(owner common.Address, balance uint64) {
	for _, r := range m {
		r.Balance(owner, balance)
	}
}

func (m Multi) Token(t lookup.TokenResult) {
	for _, r := range m {
		r.Token(t)
	}
}

func (m Multi) Failure(err error) {
	for _, r := range m {
		r.Failure(err)
	}
}

// Flush flushes every reporter, even after one fails.
func (m Multi) Flush() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Flush())
	}
	return errors.Join(errs...)
}
