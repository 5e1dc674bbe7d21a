// Package address validates user supplied wallet addresses.
//
// An address is accepted when it is "0x" (or "0X") followed by 40 hex
// characters and, if the hex part mixes upper and lower case, its casing
// matches the EIP-55 checksum. All-lowercase and all-uppercase forms carry no
// checksum and are accepted as-is.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid address")

// Validate checks that s is a well formed address.
func Validate(s string) error {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("%w: missing 0x prefix", ErrInvalid)
	}
	body := s[2:]
	if len(body) != 2*common.AddressLength {
		return fmt.Errorf("%w: expected 40 hex chars after 0x, got %d", ErrInvalid, len(body))
	}
	if _, err := hex.DecodeString(body); err != nil {
		return fmt.Errorf("%w: contains non-hex characters", ErrInvalid)
	}

	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return nil
	}
	if "0x"+body != Checksum(s) {
		return fmt.Errorf("%w: checksum mismatch", ErrInvalid)
	}
	return nil
}

// Parse validates s and converts it to a common.Address.
func Parse(s string) (common.Address, error) {
	if err := Validate(s); err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(s), nil
}

// Checksum returns the EIP-55 form of addr. The input is not validated.
func Checksum(addr string) string {
	return common.HexToAddress(addr).Hex()
}
