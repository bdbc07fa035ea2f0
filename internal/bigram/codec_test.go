package bigram

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/bigramfilter/internal/charset"
)

func TestWriteToLayout(t *testing.T) {
	m := AnalyzeString(charset.MustParse("ab"), "aabbbb")
	var buf bytes.Buffer
	n, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "a,b,\n0.2,0.2,\n0,0.6,\n", buf.String())
}

func TestLoadRoundTrip(t *testing.T) {
	orig := sampleModel(t)
	data, err := orig.MarshalText()
	require.NoError(t, err)

	loaded, err := Load(bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, orig.Charset().Equal(loaded.Charset()))
	assert.False(t, loaded.HasCounts())

	want := orig.Probabilities()
	got := loaded.Probabilities()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
	assert.Equal(t, orig.WeightedSliceProbability("wisdom"), loaded.WeightedSliceProbability("wisdom"))
}

func TestUnmarshalText(t *testing.T) {
	var m Model
	require.NoError(t, m.UnmarshalText([]byte("a,b,\r\n0.5,0.25,\r\n0.25,0,\r\n\r\n")))
	assert.Equal(t, []float64{0.5, 0.25, 0.25, 0}, m.Probabilities())
	assert.Equal(t, "ab", m.Charset().String())
}

func TestLoadAcceptsMissingTrailingComma(t *testing.T) {
	m, err := Load(strings.NewReader("a,b\n0.5,0.5\n0,0"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, 0, 0}, m.Probabilities())
}

func TestLoadRejectsMalformedInput(t *testing.T) {
	cases := map[string]struct {
		in   string
		line int
	}{
		"empty":        {"", 1},
		"empty header": {"\n", 1},
		"dup header":   {"a,a,\n1,0,\n0,0,\n", 1},
		"missing row":  {"a,b,\n0.5,0.5,\n", 3},
		"short row":    {"a,b,\n0.5,\n0,0,\n", 2},
		"long row":     {"a,b,\n0.5,0.5,0,\n0,0,\n", 2},
		"not a number": {"a,b,\n0.5,x,\n0,0,\n", 2},
		"negative":     {"a,b,\n0.5,-0.5,\n0,0,\n", 2},
		"nan":          {"a,b,\n0.5,NaN,\n0,0,\n", 2},
		"extra row":    {"a,b,\n0.5,0.5,\n0,0,\n0,0,\n", 4},
	}
	for name, tc := range cases {
		_, err := Load(strings.NewReader(tc.in))
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrFormat, name)
		var fe *FormatError
		require.True(t, errors.As(err, &fe), name)
		assert.Equal(t, tc.line, fe.Line, name)
	}
}

func TestFormatErrorMessage(t *testing.T) {
	_, err := Load(strings.NewReader("a,b,\n0.5,x,\n0,0,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2 field 2")
}
