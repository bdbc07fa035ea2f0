package charset

import (
	"errors"
	"testing"
)

func TestIndexFollowsOrder(t *testing.T) {
	cs := MustParse("ab9_é")
	for i, r := range []rune("ab9_é") {
		if got := cs.Index(r); got != i {
			t.Fatalf("expected %q at %d, got %d", r, i, got)
		}
	}
	if cs.Index('z') != -1 || cs.Index('道') != -1 {
		t.Fatalf("expected non-members to return -1")
	}
	if cs.Len() != 5 {
		t.Fatalf("expected 5 runes, got %d", cs.Len())
	}
}

func TestNewRejectsInvalidSets(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"", ErrEmpty},
		{"abca", ErrDuplicate},
		{"ab,", ErrReserved},
		{"ab\n", ErrReserved},
		{"aB", ErrReserved},
	}
	for _, tc := range cases {
		if _, err := Parse(tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("Parse(%q): expected %v, got %v", tc.in, tc.want, err)
		}
	}
}

func TestFold(t *testing.T) {
	if Fold('A') != 'a' || Fold('Z') != 'z' {
		t.Fatalf("expected ASCII uppercase to fold")
	}
	for _, r := range []rune{'a', '@', '[', 'É', '1'} {
		if Fold(r) != r {
			t.Fatalf("expected %q to pass through", r)
		}
	}
	if got := FoldString("HeLLo-É"); got != "hello-É" {
		t.Fatalf("unexpected fold: %q", got)
	}
}

func TestDefaultCharset(t *testing.T) {
	cs := MustParse(Default)
	if cs.Len() != 39 {
		t.Fatalf("expected 39 runes, got %d", cs.Len())
	}
	if !cs.Equal(MustParse(Default)) {
		t.Fatalf("expected equal charsets")
	}
}
