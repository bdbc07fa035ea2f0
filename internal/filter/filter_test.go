package filter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
	"github.com/verte-zerg/bigramfilter/internal/charset"
	"github.com/verte-zerg/bigramfilter/internal/model"
)

// aa=1 ab=1 ba=0 bb=3 over five transitions.
func testModel(t *testing.T) *bigram.Model {
	t.Helper()
	return bigram.AnalyzeString(charset.MustParse("ab"), "aabbbb")
}

func TestScorePlain(t *testing.T) {
	m := testModel(t)
	var out bytes.Buffer
	n, err := Score(strings.NewReader("ab\r\nba\nbb\n"), &out, m, ScoreOptions{})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 lines, got %d", n)
	}
	want := "0.1\tab\n0\tba\n0.3\tbb\n"
	if out.String() != want {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestScoreJSON(t *testing.T) {
	m := testModel(t)
	var out bytes.Buffer
	opts := ScoreOptions{
		JSON:     true,
		Joint:    m.JointSliceProbability,
		Classify: func(w string) bool { return m.IsWordCleartext(w, 0.05) },
	}
	if _, err := Score(strings.NewReader("ab\nba\n"), &out, m, opts); err != nil {
		t.Fatalf("score: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d", len(lines))
	}
	var rec Record
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Word != "ba" || rec.Weighted != 0 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Joint == nil || *rec.Joint != 0 {
		t.Fatalf("expected zero joint score, got %v", rec.Joint)
	}
	if rec.Cleartext == nil || *rec.Cleartext {
		t.Fatalf("expected hashed verdict")
	}
}

func TestSplitBuckets(t *testing.T) {
	m := testModel(t)
	classify := func(w string) bool { return m.IsWordCleartext(w, 0.05) }
	input := "ab\nba\nbb\nab\nba\n"

	var clearOut bytes.Buffer
	stats, err := Split(strings.NewReader(input), &clearOut, classify, SplitOptions{Bucket: model.Cleartext})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if clearOut.String() != "ab\nbb\nab\n" {
		t.Fatalf("unexpected cleartext output %q", clearOut.String())
	}
	if stats.Lines != 5 || stats.Cleartext != 3 || stats.Hashed != 2 || stats.Duplicates != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	var hashed bytes.Buffer
	stats, err = Split(strings.NewReader(input), &hashed, classify, SplitOptions{
		Bucket: model.Hashed,
		Unique: true,
		Source: "test",
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if hashed.String() != "ba\n" {
		t.Fatalf("unexpected hashed output %q", hashed.String())
	}
	if stats.Duplicates != 1 || stats.Source != "test" || stats.Bucket != model.Hashed {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.EndedAt.Before(stats.StartedAt) {
		t.Fatalf("expected ordered timestamps")
	}
}

func TestSplitUniqueOnlyDropsWrittenWords(t *testing.T) {
	m := testModel(t)
	classify := func(w string) bool { return m.IsWordCleartext(w, 0.05) }
	var out bytes.Buffer
	stats, err := Split(strings.NewReader("ba\nab\nab\n"), &out, classify, SplitOptions{
		Bucket: model.Cleartext,
		Unique: true,
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if out.String() != "ab\n" || stats.Duplicates != 1 {
		t.Fatalf("unexpected output %q stats %+v", out.String(), stats)
	}
}
