package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	digitAlphabet        = "0123456789"
	alphanumericAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// RandomDigits returns n random decimal digits.
func RandomDigits(n int) (string, error) {
	return randomString(n, digitAlphabet)
}

// RandomCode returns n random characters from an unambiguous alphanumeric set.
func RandomCode(n int) (string, error) {
	return randomString(n, alphanumericAlphabet)
}

func randomString(n int, alphabet string) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}
