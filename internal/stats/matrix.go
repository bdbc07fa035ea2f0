package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/verte-zerg/bigramfilter/internal/bigram"
)

const matrixCorner = "MATRIX"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Padding(0, 1)
	zeroStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Padding(0, 1)
	plainStyle  = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// MatrixOptions controls RenderMatrixTable.
type MatrixOptions struct {
	// Counts prints raw transition counts instead of probabilities. It is
	// ignored for models without counts.
	Counts bool
	// Color styles headers and dims empty cells.
	Color bool
}

// WriteMatrix writes the model in its persisted text form.
func WriteMatrix(w io.Writer, m *bigram.Model) error {
	if _, err := m.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write matrix: %w", err)
	}
	return nil
}

// RenderMatrixTable prints the model as a bordered grid with predecessors
// down the side and successors across the top.
func RenderMatrixTable(w io.Writer, m *bigram.Model, opts MatrixOptions) error {
	runes := m.Charset().Runes()
	counts := opts.Counts && m.HasCounts()
	var raw []uint64
	if counts {
		raw = m.Counts()
	}

	headers := make([]string, 0, len(runes)+1)
	headers = append(headers, matrixCorner)
	for _, r := range runes {
		headers = append(headers, string(r))
	}
	rows := make([][]string, 0, len(runes))
	zero := make([][]bool, 0, len(runes))
	for i, r := range runes {
		row := make([]string, 0, len(runes)+1)
		empty := make([]bool, len(runes)+1)
		row = append(row, string(r))
		for j := range runes {
			p := m.Cell(i, j)
			empty[j+1] = p == 0
			if counts {
				row = append(row, strconv.FormatUint(raw[i*len(runes)+j], 10))
				continue
			}
			row = append(row, strconv.FormatFloat(p, 'f', -1, 64))
		}
		rows = append(rows, row)
		zero = append(zero, empty)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if !opts.Color {
				return plainStyle
			}
			switch {
			case row == table.HeaderRow, col == 0:
				return headerStyle
			case row >= 0 && row < len(zero) && zero[row][col]:
				return zeroStyle
			default:
				return cellStyle
			}
		})
	if opts.Color {
		t = t.BorderStyle(borderStyle)
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	return nil
}
