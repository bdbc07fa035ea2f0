package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
	"github.com/verte-zerg/bigramfilter/internal/charset"
)

func TestWriteMatrix(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMatrix(&buf, testModel(t)); err != nil {
		t.Fatalf("write matrix: %v", err)
	}
	if buf.String() != "a,b,\n0.2,0.2,\n0,0.6,\n" {
		t.Fatalf("unexpected matrix %q", buf.String())
	}
}

func TestRenderMatrixTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderMatrixTable(&buf, testModel(t), MatrixOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{matrixCorner, " 0.2 ", " 0.6 ", " 0 "} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no escape codes without color")
	}
}

func TestRenderMatrixTableCounts(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderMatrixTable(&buf, testModel(t), MatrixOptions{Counts: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	var row string
	for _, line := range lines {
		if strings.Contains(line, " b ") && !strings.Contains(line, matrixCorner) {
			row = line
		}
	}
	if !strings.Contains(row, "3") || strings.Contains(row, "0.6") {
		t.Fatalf("expected raw counts in row %q", row)
	}

	loaded, err := bigram.FromProbabilities(charset.MustParse("ab"), []float64{0.2, 0.2, 0, 0.6})
	if err != nil {
		t.Fatalf("from probabilities: %v", err)
	}
	buf.Reset()
	if err := RenderMatrixTable(&buf, loaded, MatrixOptions{Counts: true}); err != nil {
		t.Fatalf("render loaded: %v", err)
	}
	if !strings.Contains(buf.String(), "0.6") {
		t.Fatalf("expected probabilities for a model without counts")
	}
}

func TestRenderMatrixTableKeepsSmallProbabilities(t *testing.T) {
	loaded, err := bigram.FromProbabilities(charset.MustParse("ab"), []float64{0.99996, 0.00003, 0.00001, 0})
	if err != nil {
		t.Fatalf("from probabilities: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderMatrixTable(&buf, loaded, MatrixOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"0.99996", "0.00003", "0.00001"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0.0000 ") {
		t.Fatalf("expected non-zero cells to keep their digits:\n%s", out)
	}
}
