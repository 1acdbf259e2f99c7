package random

import (
	"crypto/rand"
	"io"
	"math/big"
	mathrand "math/rand/v2"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct {
	source io.Reader
}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{source: rand.Reader}
}

// Intn returns a cryptographically random int in [0, n). If the entropy
// source fails it falls back to math/rand so results stay uniform.
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	result, err := rand.Int(r.source, big.NewInt(int64(n)))
	if err != nil {
		return mathrand.IntN(n)
	}
	return int(result.Int64())
}

// Die rolls a die with the given number of faces, returning a value in [1, faces]
func Die(r Random, faces int) int {
	return r.Intn(faces) + 1
}
