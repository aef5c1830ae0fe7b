package util

import (
	"crypto/rand"
	"math/big"
)

// ShortIDAlphabet is the character set used for generated identifiers.
const ShortIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultShortIDLength is the identifier length used for mailbox local-parts.
const DefaultShortIDLength = 8

var alphabetSize = big.NewInt(int64(len(ShortIDAlphabet)))

// GenerateShortID returns length characters drawn uniformly from ShortIDAlphabet.
// Non-positive lengths yield an empty string.
func GenerateShortID(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		b[i] = ShortIDAlphabet[n.Int64()]
	}
	return string(b)
}
