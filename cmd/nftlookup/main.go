// nftlookup lists the tokens a wallet holds in one ERC-721 collection on Base
// mainnet, together with each token's off-chain metadata.
//
// Usage:
//
//	nftlookup                                  prompt for the wallet address
//	nftlookup 0xd8dA6BF2...                    look up the given wallet
//	nftlookup 0xd8dA... --format json          machine readable output
//	nftlookup --contract 0xABC... --log-level debug
//	nftlookup 0xd8dA... --report-dir reports  also save the JSON report
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dmagro/eth-nft-lookup/internal/config"
	"github.com/dmagro/eth-nft-lookup/internal/env"
	"github.com/dmagro/eth-nft-lookup/internal/erc721"
	"github.com/dmagro/eth-nft-lookup/internal/lookup"
	"github.com/dmagro/eth-nft-lookup/internal/metadata"
	"github.com/dmagro/eth-nft-lookup/internal/output"
	"github.com/dmagro/eth-nft-lookup/internal/reports"
	"github.com/dmagro/eth-nft-lookup/internal/rpc"
)

// reportedError marks a failure the renderer has already shown.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

type options struct {
	cfgPath   string
	envFile   string
	format    string
	contract  string
	logLevel  string
	reportDir string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "nftlookup [wallet-address]",
		Short: "List a wallet's tokens in an ERC-721 collection on Base",
		Long: `Look up the tokens a wallet owns in one ERC-721 collection and print the
name, description and image from each token's metadata.

The node API key and the collection address are read from ALCHEMY_API_KEY and
NFT_CONTRACT_ADDRESS, which may also be set in a .env file. When no wallet
address is given, it is read from stdin.

Example:
  nftlookup 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var owner string
			if len(args) == 1 {
				owner = args[0]
			}
			return run(cmd.Context(), opts, owner, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.cfgPath, "config", "config/nftlookup.yaml", "Config file path (optional)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", env.DefaultPath, "Environment file loaded before the config")
	cmd.Flags().StringVar(&opts.format, "format", output.FormatTerminal, "Output format: terminal|table|json")
	cmd.Flags().StringVar(&opts.contract, "contract", "", "Collection address (overrides NFT_CONTRACT_ADDRESS)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Diagnostic log level: debug|info|warn|error")
	cmd.Flags().StringVar(&opts.reportDir, "report-dir", "", "Also save the JSON report to a timestamped file in this directory")

	return cmd
}

func run(parent context.Context, opts options, owner string, stdin io.Reader, stdout, stderr io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := newLogger(opts.logLevel, stderr)
	if err != nil {
		return err
	}

	if err := env.Load(opts.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(opts.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.contract != "" {
		cfg.ContractAddress = opts.contract
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rep, err := output.New(opts.format, stdout)
	if err != nil {
		return err
	}
	promptOut := stdout
	if opts.format == output.FormatJSON {
		output.DisableColors()
		promptOut = stderr
	}

	var archive *output.JSON
	if opts.reportDir != "" {
		archive = output.NewJSON(io.Discard)
		rep = output.Multi{rep, archive}
	}

	client := rpc.NewClient(cfg.Network.Name, cfg.RPCURL(), cfg.RPCTimeout)
	collection, err := erc721.New(common.HexToAddress(cfg.ContractAddress), client)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"network":  cfg.Network.Name,
		"chain_id": cfg.Network.ChainID,
		"contract": collection.Address().Hex(),
		"gateway":  cfg.Metadata.Gateway,
	}).Debug("configuration loaded")

	driver := lookup.New(lookup.Options{
		Network:         cfg.Network.Name,
		ExpectedChainID: cfg.Network.ChainID,
		Node:            client,
		Collection:      collection,
		Metadata:        metadata.NewResolver(cfg.Metadata.Gateway, cfg.Metadata.Timeout, log),
		Reporter:        rep,
		Owner:           owner,
		Input:           stdin,
		PromptOut:       promptOut,
		Log:             log,
	})

	runErr := driver.Run(ctx)

	if archive != nil {
		path, err := reports.WriteJSON(opts.reportDir, "nftlookup", archive.Report(), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Report saved to %s\n", path)
	}

	if runErr != nil {
		if errors.Is(runErr, lookup.ErrReport) {
			return runErr
		}
		return reportedError{runErr}
	}
	return nil
}

func newLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log, nil
}
