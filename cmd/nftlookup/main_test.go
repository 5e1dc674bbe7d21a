package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmagro/eth-nft-lookup/internal/config"
	"github.com/dmagro/eth-nft-lookup/internal/erc721"
	"github.com/dmagro/eth-nft-lookup/internal/lookup"
	"github.com/dmagro/eth-nft-lookup/internal/output"
	"github.com/dmagro/eth-nft-lookup/internal/rpc"
)

const (
	wallet   = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	contract = "0x1111111111111111111111111111111111111111"
	cidV0    = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// newChain serves JSON-RPC on / and metadata documents under /ipfs/. The
// wallet owns token 7 only.
func newChain(t *testing.T) *httptest.Server {
	t.Helper()
	parsed, err := erc721.ParseABI()
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if r.URL.Path == "/ipfs/"+cidV0+"/7.json" {
				_, _ = w.Write([]byte(`{"name":"Seven","description":"Lucky","image":"ipfs://img/7.png"}`))
				return
			}
			http.NotFound(w, r)
			return
		}

		var req rpc.Request
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}

		var result string
		switch req.Method {
		case "eth_chainId":
			result = "0x2105"
		case "eth_call":
			call := req.Params[0].(map[string]interface{})
			data, err := hexutil.Decode(call["data"].(string))
			if !assert.NoError(t, err) {
				return
			}
			m, err := parsed.MethodById(data[:4])
			if !assert.NoError(t, err) {
				return
			}
			args, err := m.Inputs.Unpack(data[4:])
			if !assert.NoError(t, err) {
				return
			}

			var out []byte
			switch m.Name {
			case erc721.MethodBalanceOf:
				n := int64(0)
				if args[0].(common.Address) == common.HexToAddress(wallet) {
					n = 1
				}
				out, err = m.Outputs.Pack(big.NewInt(n))
			case erc721.MethodTokenOfOwnerByIndex:
				out, err = m.Outputs.Pack(big.NewInt(7))
			case erc721.MethodTokenURI:
				out, err = m.Outputs.Pack(fmt.Sprintf("ipfs://%s/%s.json", cidV0, args[0].(*big.Int)))
			}
			if !assert.NoError(t, err) {
				return
			}
			result = hexutil.Encode(out)
		default:
			t.Errorf("unexpected method %s", req.Method)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, srvURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nftlookup.yaml")
	body := fmt.Sprintf(`
network:
  name: base
  rpc_url: %s
  chain_id: 8453
metadata:
  gateway: %s/ipfs/
`, srvURL, srvURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

type result struct {
	err    error
	stdout string
	stderr string
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("NFT_CONTRACT_ADDRESS", "")

	cmd := rootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "absent.env")))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return result{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

func TestTerminalLookup(t *testing.T) {
	srv := newChain(t)
	res := execute(t, "", wallet, "--config", writeConfig(t, srv.URL), "--contract", contract)

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Connected to base (chain 8453)")
	assert.Contains(t, res.stdout, "NFT balance in wallet: 1\n")
	assert.Contains(t, res.stdout, "NFT #1:\nToken ID: 7\nName: Seven\nDescription: Lucky\nImage: ipfs://img/7.png\n")
	assert.Empty(t, res.stderr)
}

func TestPromptedLookup(t *testing.T) {
	srv := newChain(t)
	res := execute(t, wallet+"\n", "--config", writeConfig(t, srv.URL), "--contract", contract)

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, lookup.Prompt)
	assert.Contains(t, res.stdout, "Token ID: 7")
}

func TestEmptyWallet(t *testing.T) {
	srv := newChain(t)
	res := execute(t, "", "0x2222222222222222222222222222222222222222", "--config", writeConfig(t, srv.URL), "--contract", contract)

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "This wallet does not own any NFTs in this collection.")
	assert.NotContains(t, res.stdout, "NFT #1")
}

func TestJSONLookup(t *testing.T) {
	srv := newChain(t)
	res := execute(t, "", wallet, "--config", writeConfig(t, srv.URL), "--contract", contract, "--format", "json")
	require.NoError(t, res.err)

	var report output.JSONReport
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.Equal(t, uint64(8453), report.ChainID)
	assert.Equal(t, wallet, report.Owner)
	require.NotNil(t, report.Balance)
	assert.Equal(t, uint64(1), *report.Balance)
	require.Len(t, report.Tokens, 1)
	assert.Equal(t, "7", report.Tokens[0].TokenID)
	assert.Equal(t, "Seven", report.Tokens[0].Metadata["name"])
	assert.Empty(t, report.Error)
}

func TestReportDirArchivesJSON(t *testing.T) {
	srv := newChain(t)
	dir := filepath.Join(t.TempDir(), "reports")
	res := execute(t, "", wallet, "--config", writeConfig(t, srv.URL), "--contract", contract, "--report-dir", dir)
	require.NoError(t, res.err)

	// Terminal output is unchanged.
	assert.Contains(t, res.stdout, "Token ID: 7")

	files, err := filepath.Glob(filepath.Join(dir, "nftlookup-*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, res.stderr, "Report saved to "+files[0])

	b, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var report output.JSONReport
	require.NoError(t, json.Unmarshal(b, &report))
	require.Len(t, report.Tokens, 1)
	assert.Equal(t, "Seven", report.Tokens[0].Metadata["name"])
}

func TestInvalidWalletIsReported(t *testing.T) {
	srv := newChain(t)
	res := execute(t, "", "d8dA6BF26964aF9D7eEd9e03E53415D37aA96045", "--config", writeConfig(t, srv.URL), "--contract", contract)

	require.ErrorIs(t, res.err, lookup.ErrInvalidAddress)
	assert.ErrorAs(t, res.err, new(reportedError))
	assert.Contains(t, res.stdout, "Invalid wallet address!")
	assert.NotContains(t, res.stdout, "NFT balance")
}

func TestMissingContractAddress(t *testing.T) {
	srv := newChain(t)
	res := execute(t, "", wallet, "--config", writeConfig(t, srv.URL))

	require.ErrorIs(t, res.err, config.ErrMissing)
	assert.False(t, isReported(res.err))
	assert.Empty(t, res.stdout)
}

func TestUnknownFormat(t *testing.T) {
	srv := newChain(t)
	res := execute(t, "", wallet, "--config", writeConfig(t, srv.URL), "--contract", contract, "--format", "xml")

	require.Error(t, res.err)
	assert.False(t, isReported(res.err))
}

func TestInvalidLogLevel(t *testing.T) {
	res := execute(t, "", wallet, "--log-level", "loud")
	assert.ErrorContains(t, res.err, "invalid --log-level")
}

func TestTooManyArgs(t *testing.T) {
	res := execute(t, "", wallet, wallet)
	assert.Error(t, res.err)
}

func isReported(err error) bool {
	_, ok := err.(reportedError)
	return ok
}
