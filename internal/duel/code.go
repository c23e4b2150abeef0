package duel

import (
	"crypto/rand"
	"math/big"
)

// CodeAlphabet leaves out characters that are easy to misread: 0, o, 1, l, i.
const CodeAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

const CodeLength = 6

// NewCode returns a fresh invite code for which exists reports false. The
// keyspace is large enough that retries are rare; no bound is enforced.
func NewCode(exists func(code string) bool) string {
	for {
		code := randomCode()
		if !exists(code) {
			return code
		}
	}
}

func randomCode() string {
	size := big.NewInt(int64(len(CodeAlphabet)))
	b := make([]byte, CodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			panic(err) // crypto/rand never fails on supported platforms
		}
		b[i] = CodeAlphabet[n.Int64()]
	}
	return string(b)
}
