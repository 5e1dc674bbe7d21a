package address

import (
	"errors"
	"strings"
	"testing"
)

const vitalik = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"checksummed", vitalik, false},
		{"all lowercase", strings.ToLower(vitalik), false},
		{"all uppercase", "0x" + strings.ToUpper(vitalik[2:]), false},
		{"uppercase prefix", "0X" + vitalik[2:], false},
		{"uppercase prefix lowercase body", "0X" + strings.ToLower(vitalik[2:]), false},
		{"zero address", "0x0000000000000000000000000000000000000000", false},
		{"bad checksum", "0xd8da6BF26964aF9D7eEd9e03E53415D37aA96045", true},
		{"uppercase prefix bad checksum", "0Xd8da6BF26964aF9D7eEd9e03E53415D37aA96045", true},
		{"missing 0x", vitalik[2:], true},
		{"too short", "0xd8dA6BF269", true},
		{"too long", vitalik + "aa", true},
		{"invalid hex", "0xZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZ", true},
		{"empty", "", true},
		{"prefix only", "0x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate(%q) error %v does not wrap ErrInvalid", tt.addr, err)
			}
		})
	}
}

// EIP-55 reference vectors.
func TestValidateChecksumVectors(t *testing.T) {
	vectors := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}

	for _, v := range vectors {
		if err := Validate(v); err != nil {
			t.Errorf("Validate(%s) = %v, want nil", v, err)
		}
		if got := Checksum(strings.ToLower(v)); got != v {
			t.Errorf("Checksum(%s) = %s, want %s", strings.ToLower(v), got, v)
		}

		// Flip the case of the first letter to break the checksum.
		i := strings.IndexFunc(v[2:], func(r rune) bool { return r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F' }) + 2
		flipped := []byte(v)
		if flipped[i] >= 'a' {
			flipped[i] -= 'a' - 'A'
		} else {
			flipped[i] += 'a' - 'A'
		}
		if err := Validate(string(flipped)); !errors.Is(err, ErrInvalid) {
			t.Errorf("Validate(%s) = %v, want checksum mismatch", flipped, err)
		}
	}
}

func TestParse(t *testing.T) {
	got, err := Parse(strings.ToLower(vitalik))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hex() != vitalik {
		t.Errorf("Parse() = %s, want %s", got.Hex(), vitalik)
	}

	got, err = Parse("0X" + vitalik[2:])
	if err != nil {
		t.Fatalf("unexpected error for 0X prefix: %v", err)
	}
	if got.Hex() != vitalik {
		t.Errorf("Parse(0X...) = %s, want %s", got.Hex(), vitalik)
	}

	if _, err := Parse("not-an-address"); err == nil {
		t.Error("Parse() expected error for malformed input")
	}
}
