package invoke

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const etherDecimals = 18

// ErrInvalidAmount is returned for value-field text that is not a
// non-negative decimal ether amount.
var ErrInvalidAmount = errors.New("invalid ether amount")

// ParseEther converts a decimal ether amount such as "0.5" to wei. Empty
// text is zero.
func ParseEther(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(uint256.Int), nil
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, fmt.Errorf("%w: %q (example: 0.5)", ErrInvalidAmount, s)
	}
	if len(frac) > etherDecimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, etherDecimals)
	}

	wei := strings.TrimLeft(whole+frac+strings.Repeat("0", etherDecimals-len(frac)), "0")
	if wei == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(wei)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, s)
	}
	return v, nil
}

// FormatEther renders wei as a decimal ether amount without trailing zeros.
func FormatEther(wei *uint256.Int) string {
	if wei == nil || wei.IsZero() {
		return "0"
	}
	s := wei.Dec()
	if len(s) <= etherDecimals {
		s = strings.Repeat("0", etherDecimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-etherDecimals], strings.TrimRight(s[len(s)-etherDecimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
