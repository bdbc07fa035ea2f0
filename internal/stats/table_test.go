package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"From", "To", "Probability"}
	rows := [][]string{
		{"t", "h", "0.0425"},
		{"<space>", "e", "0.01"},
	}
	rightAlign := map[int]bool{2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "From    To Probability" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "t       h       0.0425" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "<space> e         0.01" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"A", "B"}, [][]string{{"日", "x"}, {"a", "y"}}, nil)
	if lines[1] != "日 x" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "a  y" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}
