package ioutils

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUints32Roundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := [][]uint32{
		nil,
		{0},
		{1, 2, 3, 4, 5},
		make([]uint32, 1000),
	}
	random := make([]uint32, 513)
	for i := range random {
		random[i] = rng.Uint32()
	}
	cases = append(cases, random)

	for _, xs := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteUints32(&buf, xs))
		got, err := ReadUints32(&buf)
		require.NoError(t, err)
		require.Equal(t, len(xs), len(got))
		for i := range xs {
			require.Equal(t, xs[i], got[i])
		}
	}
}

func TestReadUints32RejectsHugeLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	_, err := ReadUints32(&buf)
	require.Error(t, err)
}
