// Package charset defines the alphabet used for bigram statistics.
package charset

import (
	"errors"
	"fmt"
	"strings"
)

// Default is the alphabet used when none is configured.
const Default = "abcdefghijklmnopqrstuvwxyz1234567890-+_"

var (
	// ErrEmpty is returned for a charset without characters.
	ErrEmpty = errors.New("charset is empty")
	// ErrDuplicate is returned when a character appears twice.
	ErrDuplicate = errors.New("duplicate character in charset")
	// ErrReserved is returned for characters that cannot be part of a charset.
	ErrReserved = errors.New("reserved character in charset")
)

// Charset is an ordered set of distinct runes with constant-time lookup.
// The zero value is not usable; build one with New or Parse.
type Charset struct {
	runes []rune
	// ascii holds index+1 for runes below 128, zero when absent.
	ascii [128]int16
	wide  map[rune]int
}

// New builds a charset from runes in the given order.
func New(runes []rune) (*Charset, error) {
	if len(runes) == 0 {
		return nil, ErrEmpty
	}
	cs := &Charset{
		runes: make([]rune, 0, len(runes)),
		wide:  map[rune]int{},
	}
	for _, r := range runes {
		if err := checkRune(r); err != nil {
			return nil, err
		}
		if cs.Index(r) >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, r)
		}
		pos := len(cs.runes)
		cs.runes = append(cs.runes, r)
		if r >= 0 && r < 128 {
			cs.ascii[r] = int16(pos + 1)
		} else {
			cs.wide[r] = pos
		}
	}
	return cs, nil
}

// Parse builds a charset from the runes of s.
func Parse(s string) (*Charset, error) {
	return New([]rune(s))
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) *Charset {
	cs, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return cs
}

func checkRune(r rune) error {
	switch {
	case r == ',' || r == '\n' || r == '\r':
		return fmt.Errorf("%w: %q is used by the matrix format", ErrReserved, r)
	case r >= 'A' && r <= 'Z':
		return fmt.Errorf("%w: %q is folded to lowercase before lookup", ErrReserved, r)
	}
	return nil
}

// Len returns the number of characters.
func (c *Charset) Len() int {
	return len(c.runes)
}

// Index returns the position of r, or -1 when r is not a member.
func (c *Charset) Index(r rune) int {
	if r >= 0 && r < 128 {
		return int(c.ascii[r]) - 1
	}
	if pos, ok := c.wide[r]; ok {
		return pos
	}
	return -1
}

// Contains reports whether r is a member.
func (c *Charset) Contains(r rune) bool {
	return c.Index(r) >= 0
}

// At returns the rune at position i.
func (c *Charset) At(i int) rune {
	return c.runes[i]
}

// Runes returns a copy of the runes in order.
func (c *Charset) Runes() []rune {
	out := make([]rune, len(c.runes))
	copy(out, c.runes)
	return out
}

// String returns the runes in order as a string.
func (c *Charset) String() string {
	return string(c.runes)
}

// Equal reports whether both charsets hold the same runes in the same order.
func (c *Charset) Equal(other *Charset) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.String() == other.String()
}

// Fold lowercases ASCII A-Z. Every other rune is returned unchanged.
func Fold(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// FoldString applies Fold to every rune of s.
func FoldString(s string) string {
	return strings.Map(Fold, s)
}
