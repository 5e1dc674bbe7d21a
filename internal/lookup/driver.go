// Package lookup drives one wallet lookup: check the node, read and validate
// the wallet address, query the balance, then walk the owner's tokens one by
// one and hand each result to a Reporter.
package lookup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/dmagro/eth-nft-lookup/internal/address"
	"github.com/dmagro/eth-nft-lookup/internal/metadata"
)

// Halting failures. Run wraps exactly one of these when it stops early.
var (
	ErrNotConnected   = errors.New("unable to connect to node")
	ErrInput          = errors.New("no wallet address provided")
	ErrInvalidAddress = errors.New("invalid wallet address")
	ErrBalance        = errors.New("balance query failed")
)

// ErrReport is returned when the reporter fails to write its output. The
// reporter has not shown it.
var ErrReport = errors.New("failed to write report")

// ConnectionError is returned when the node cannot be reached. It matches
// ErrNotConnected under errors.Is.
type ConnectionError struct {
	Network string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrNotConnected, e.Network, e.Err)
}

func (e *ConnectionError) Is(target error) bool { return target == ErrNotConnected }

func (e *ConnectionError) Unwrap() error { return e.Err }

// Prompt is shown when no wallet address was given up front.
const Prompt = "Enter your Ethereum wallet address: "

// Node is the chain endpoint. *rpc.Client satisfies it.
type Node interface {
	ChainID(ctx context.Context) (uint64, time.Duration, error)
}

// Collection is the enumerable ERC-721 contract. *erc721.Contract satisfies it.
type Collection interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	TokenOfOwnerByIndex(ctx context.Context, owner common.Address, index *big.Int) (*big.Int, error)
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)
}

// MetadataSource resolves a token URI to its JSON document, or nil.
// *metadata.Resolver satisfies it.
type MetadataSource interface {
	Resolve(ctx context.Context, uri string) metadata.Metadata
}

// Reporter receives progress in order. Failure is called at most once, for
// the error Run is about to return. Flush is always called last.
type Reporter interface {
	Connected(network string, chainID uint64, latency time.Duration)
	Balance(owner common.Address, balance uint64)
	Token(r TokenResult)
	Failure(err error)
	Flush() error
}

// Options wires a Driver.
type Options struct {
	Network         string // display name, e.g. "base"
	ExpectedChainID uint64 // 0 skips the chain id check
	Node            Node
	Collection      Collection
	Metadata        MetadataSource
	Reporter        Reporter

	// Owner skips the prompt when non-empty.
	Owner     string
	Input     io.Reader
	PromptOut io.Writer

	Log logrus.FieldLogger
}

// Driver runs a single lookup. It is not safe for concurrent use.
type Driver struct {
	opts Options
}

// New returns a Driver for opts. A nil Log falls back to the logrus standard
// logger and a nil PromptOut discards the prompt.
func New(opts Options) *Driver {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.PromptOut == nil {
		opts.PromptOut = io.Discard
	}
	return &Driver{opts: opts}
}

// Run executes the lookup. It returns nil once every token index has been
// visited, even if some tokens failed; those failures are carried in the
// TokenResult values given to the reporter.
func (d *Driver) Run(ctx context.Context) (err error) {
	rep := d.opts.Reporter
	defer func() {
		if err != nil {
			rep.Failure(err)
		}
		if ferr := rep.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrReport, ferr)
		}
	}()

	if err := d.checkConnection(ctx); err != nil {
		return err
	}

	raw, err := d.readOwner()
	if err != nil {
		return err
	}

	owner, err := address.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	balance, err := d.queryBalance(ctx, owner)
	if err != nil {
		return err
	}
	rep.Balance(owner, balance)

	for i := uint64(0); i < balance; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("interrupted after %d of %d tokens: %w", i, balance, err)
		}
		rep.Token(d.fetchToken(ctx, owner, i))
	}
	return nil
}

func (d *Driver) checkConnection(ctx context.Context) error {
	chainID, latency, err := d.opts.Node.ChainID(ctx)
	if err != nil {
		return &ConnectionError{Network: d.opts.Network, Err: err}
	}
	if want := d.opts.ExpectedChainID; want != 0 && chainID != want {
		d.opts.Log.WithFields(logrus.Fields{
			"network":  d.opts.Network,
			"expected": want,
			"actual":   chainID,
		}).Warn("endpoint reports an unexpected chain id")
	}
	d.opts.Reporter.Connected(d.opts.Network, chainID, latency)
	return nil
}

// readOwner returns the preset owner or reads a single line after one prompt.
func (d *Driver) readOwner() (string, error) {
	if d.opts.Owner != "" {
		return strings.TrimSpace(d.opts.Owner), nil
	}
	if d.opts.Input == nil {
		return "", ErrInput
	}

	fmt.Fprint(d.opts.PromptOut, Prompt)
	line, err := bufio.NewReader(d.opts.Input).ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: %v", ErrInput, err)
	}
	if line == "" {
		return "", ErrInput
	}
	return line, nil
}

func (d *Driver) queryBalance(ctx context.Context, owner common.Address) (uint64, error) {
	bal, err := d.opts.Collection.BalanceOf(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBalance, err)
	}
	if bal.Sign() < 0 || !bal.IsUint64() {
		return 0, fmt.Errorf("%w: balance %s out of range", ErrBalance, bal)
	}
	return bal.Uint64(), nil
}

// fetchToken runs the per-token pipeline. It never returns an error: a failed
// step is recorded in the result and the caller moves on to the next index.
func (d *Driver) fetchToken(ctx context.Context, owner common.Address, index uint64) TokenResult {
	r := TokenResult{Ordinal: index + 1, Index: index}

	id, err := d.opts.Collection.TokenOfOwnerByIndex(ctx, owner, new(big.Int).SetUint64(index))
	if err != nil {
		return r.fail(StepTokenID, err)
	}
	r.TokenID = id

	uri, err := d.opts.Collection.TokenURI(ctx, id)
	if err != nil {
		return r.fail(StepTokenURI, err)
	}
	r.URI = uri

	r.Metadata = d.opts.Metadata.Resolve(ctx, uri)
	return r
}
