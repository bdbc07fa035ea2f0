package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
	"github.com/verte-zerg/bigramfilter/internal/charset"
)

// aa=1 ab=1 ba=0 bb=3 over five transitions.
func testModel(t *testing.T) *bigram.Model {
	t.Helper()
	return bigram.AnalyzeString(charset.MustParse("ab"), "aabbbb")
}

func TestTopTransitions(t *testing.T) {
	top := TopTransitions(testModel(t), 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 transitions, got %d", len(top))
	}
	got := []string{
		string([]rune{top[0].From, top[0].To}),
		string([]rune{top[1].From, top[1].To}),
		string([]rune{top[2].From, top[2].To}),
	}
	if strings.Join(got, ",") != "bb,aa,ab" {
		t.Fatalf("unexpected order: %v", got)
	}
	if len(TopTransitions(testModel(t), 100)) != 4 {
		t.Fatalf("expected n to be clamped")
	}
}

func TestWeakTransitionsSkipUnseen(t *testing.T) {
	weak := WeakTransitions(testModel(t), 10)
	if len(weak) != 3 {
		t.Fatalf("expected 3 seen transitions, got %d", len(weak))
	}
	if weak[0].From != 'a' || weak[0].To != 'a' || weak[2].To != 'b' || weak[2].From != 'b' {
		t.Fatalf("unexpected order: %+v", weak)
	}
}

func TestRenderTopTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTopTable(&buf, "Top", TopTransitions(testModel(t), 1), true); err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Top\nPair Probability Count\nbb      0.600000     3\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected table:\n%q", buf.String())
	}
	buf.Reset()
	if err := RenderTopTable(&buf, "Top", nil, false); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if buf.String() != "No transitions found.\n" {
		t.Fatalf("unexpected empty output %q", buf.String())
	}
}
