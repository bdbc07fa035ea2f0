package bigram

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/bigramfilter/internal/charset"
)

// ErrFormat matches every error produced while parsing a stored matrix.
var ErrFormat = errors.New("bigram: malformed matrix")

// FormatError describes where a stored matrix failed to parse.
// Field is zero when the problem concerns the whole line.
type FormatError struct {
	Line  int
	Field int
	Msg   string
	Err   error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bigram: matrix line %d", e.Line)
	if e.Field > 0 {
		fmt.Fprintf(&b, " field %d", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying parse error, if any.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// WriteTo writes the matrix in its text form: a header with every charset
// rune followed by a comma, then one row per predecessor holding one
// comma-terminated probability per successor.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	for _, r := range m.cs.Runes() {
		cw.writeString(string(r))
		cw.writeString(",")
	}
	cw.writeString("\n")
	var scratch []byte
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			scratch = strconv.AppendFloat(scratch[:0], m.probs[i*m.n+j], 'f', -1, 64)
			scratch = append(scratch, ',')
			cw.write(scratch)
		}
		cw.writeString("\n")
	}
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

// MarshalText implements encoding.TextMarshaler.
func (m *Model) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Model) UnmarshalText(data []byte) error {
	loaded, err := Load(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*m = *loaded
	return nil
}

// Load parses a matrix written by WriteTo. The charset is recovered from the
// header line. The returned model carries probabilities only.
func Load(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)
	lineNo := 0
	next := func() (string, bool, error) {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", false, err
		}
		if line == "" && err != nil {
			return "", false, nil
		}
		lineNo++
		return strings.TrimRight(line, "\r\n"), true, nil
	}

	header, ok, err := next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &FormatError{Line: 1, Msg: "missing header"}
	}
	runes := make([]rune, 0, len(header))
	for _, r := range header {
		if r != ',' {
			runes = append(runes, r)
		}
	}
	cs, err := charset.New(runes)
	if err != nil {
		return nil, &FormatError{Line: 1, Msg: "invalid header", Err: err}
	}

	n := cs.Len()
	probs := make([]float64, 0, n*n)
	for row := 0; row < n; row++ {
		line, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &FormatError{Line: lineNo + 1, Msg: fmt.Sprintf("expected %d rows, got %d", n, row)}
		}
		fields := strings.Split(line, ",")
		if len(fields) > 0 && fields[len(fields)-1] == "" {
			fields = fields[:len(fields)-1]
		}
		if len(fields) != n {
			return nil, &FormatError{Line: lineNo, Msg: fmt.Sprintf("expected %d fields, got %d", n, len(fields))}
		}
		for i, field := range fields {
			p, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, &FormatError{Line: lineNo, Field: i + 1, Msg: "invalid probability", Err: err}
			}
			if math.IsNaN(p) || p < 0 || p > 1 {
				return nil, &FormatError{Line: lineNo, Field: i + 1, Msg: fmt.Sprintf("probability %v out of range", p)}
			}
			probs = append(probs, p)
		}
	}

	for {
		line, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if strings.TrimSpace(line) != "" {
			return nil, &FormatError{Line: lineNo, Msg: fmt.Sprintf("unexpected row after %d rows", n)}
		}
	}

	return &Model{cs: cs, n: n, probs: probs}, nil
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) write(p []byte) {
	if c.err != nil {
		return
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
}

func (c *countingWriter) writeString(s string) {
	if c.err != nil {
		return
	}
	n, err := c.w.WriteString(s)
	c.n += int64(n)
	c.err = err
}
