package oto_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/idtap/swara/oto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatBufferTo16BitLE(t *testing.T) {
	tests := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, math.MaxInt16},
		{-1, -math.MaxInt16},
		{0.5, 16383},
		{3, math.MaxInt16},
		{-3, -math.MaxInt16},
	}
	in := make([]float32, len(tests))
	for i, tt := range tests {
		in[i] = tt.in
	}
	prefix := []byte{0xAA}
	out := oto.FloatBufferTo16BitLE(in, prefix)
	require.Len(t, out, 1+2*len(tests))
	assert.Equal(t, byte(0xAA), out[0])
	for i, tt := range tests {
		got := int16(binary.LittleEndian.Uint16(out[1+2*i:]))
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}
