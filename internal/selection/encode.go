package selection

import (
	"errors"
	"math/big"
	"strings"
)

var (
	// ErrOutOfRange is returned when the committed index is not in the list
	ErrOutOfRange = errors.New("selection index out of range")
	// ErrEmptyValue is returned when the chosen item is empty
	ErrEmptyValue = errors.New("selected value is empty")
	// ErrOverflow is returned when an encoded key does not fit in int64
	ErrOverflow = errors.New("encoded selection overflows int64")
)

var base26 = big.NewInt(26)

// Encode maps s to a numeric key in bijective base 26: after lower-casing,
// every character contributes (code - 96) * 26^(len-pos-1), so "a" is 1,
// "z" is 26 and "ab" is 28. Characters outside a-z are encoded by the same
// formula.
func Encode(s string) (int64, error) {
	runes := []rune(strings.ToLower(s))
	acc := new(big.Int)
	digit := new(big.Int)
	for _, r := range runes {
		acc.Mul(acc, base26)
		digit.SetInt64(int64(r) - 96)
		acc.Add(acc, digit)
	}
	if !acc.IsInt64() {
		return 0, ErrOverflow
	}
	return acc.Int64(), nil
}
