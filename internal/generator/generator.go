// Package generator builds random tokens that look hashed or encoded.
package generator

import (
	"math/rand"
	"time"
)

// Alphabets used for random tokens.
const (
	Hex    = "0123456789abcdef"
	Base64 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	Alnum  = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Generator produces random tokens.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Token returns a random token of length runes drawn from alphabet.
func (g *Generator) Token(alphabet string, length int) string {
	runes := []rune(alphabet)
	if len(runes) == 0 || length <= 0 {
		return ""
	}
	out := make([]rune, length)
	for i := range out {
		out[i] = runes[g.rnd.Intn(len(runes))]
	}
	return string(out)
}

// Tokens returns count tokens mixing hex digests, base64 blobs and random
// alphanumerics, with lengths between minLen and maxLen.
func (g *Generator) Tokens(count, minLen, maxLen int) []string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	alphabets := []string{Hex, Base64, Alnum}
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		length := minLen + g.rnd.Intn(maxLen-minLen+1)
		result = append(result, g.Token(alphabets[i%len(alphabets)], length))
	}
	return result
}
