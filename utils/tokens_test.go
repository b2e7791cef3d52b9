package utils

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenReader(t *testing.T) {
	tr := NewTokenReader(strings.NewReader("block 4\n3 7 8\n9   1.5e-3\n"))
	require.NoError(t, tr.Expect("block"))
	n, err := tr.Int()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	tok, err := tr.Peek()
	require.NoError(t, err)
	assert.Equal(t, "3", tok)

	I, err := tr.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8, 9}, I)

	f, err := tr.Float()
	require.NoError(t, err)
	assert.Equal(t, 1.5e-3, f)

	_, err = tr.Next()
	assert.Equal(t, io.EOF, err)
}

func TestTokenReaderErrors(t *testing.T) {
	tr := NewTokenReader(strings.NewReader("cells x"))
	err := tr.Expect("block")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word 1")

	_, err = tr.Int()
	assert.Error(t, err)

	_, err = NewTokenReader(strings.NewReader("-2 1")).Ints()
	assert.Error(t, err)

	_, err = NewTokenReader(strings.NewReader("3 1 2")).Ints()
	assert.ErrorIs(t, err, io.EOF)
}

func TestAppend(t *testing.T) {
	buf := AppendInts(nil, []int{4, -1, 12})
	assert.Equal(t, "3 4 -1 12", string(buf))
	assert.Equal(t, "0", string(AppendInts(nil, nil)))

	for _, v := range []float64{0.1, 1. / 3, -2.5e-300, 7} {
		tr := NewTokenReader(strings.NewReader(string(AppendFloat(nil, v))))
		got, err := tr.Float()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	assert.NotEmpty(t, GetMemUsage())
}
