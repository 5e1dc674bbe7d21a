// Package output renders a wallet lookup for humans (terminal, table) or
// machines (json). Every renderer implements lookup.Reporter.
package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dmagro/eth-nft-lookup/internal/lookup"
)

const (
	FormatTerminal = "terminal"
	FormatTable    = "table"
	FormatJSON     = "json"
)

// Placeholders printed for metadata fields that are absent.
const (
	NoName        = "No name"
	NoDescription = "No description"
	NoImage       = "No image"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// New returns the reporter for format, writing to w.
func New(format string, w io.Writer) (lookup.Reporter, error) {
	switch format {
	case "", FormatTerminal:
		return NewTerminal(w), nil
	case FormatTable:
		return NewTable(w), nil
	case FormatJSON:
		return NewJSON(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected terminal|table|json)", format)
	}
}

// DisableColors turns off ANSI colors for every renderer.
func DisableColors() {
	color.NoColor = true
}

// colorLatency shades a round trip by how responsive the node is.
func colorLatency(ms int64) string {
	text := fmt.Sprintf("%dms", ms)
	switch {
	case ms < 100:
		return green(text)
	case ms < 300:
		return yellow(text)
	default:
		return red(text)
	}
}

// failureMessage maps a halting error to the line shown to the user.
func failureMessage(err error) string {
	var connErr *lookup.ConnectionError
	switch {
	case errors.As(err, &connErr):
		return fmt.Sprintf("Unable to connect to the %s network. Please check your API key.", connErr.Network)
	case errors.Is(err, lookup.ErrNotConnected):
		return "Unable to connect to the network. Please check your API key."
	case errors.Is(err, lookup.ErrInput):
		return "No wallet address entered."
	case errors.Is(err, lookup.ErrInvalidAddress):
		return "Invalid wallet address!"
	default:
		return fmt.Sprintf("An error occurred: %v", err)
	}
}
