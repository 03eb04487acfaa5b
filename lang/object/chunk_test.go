package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hypl/lang/object"
)

func TestChunkWriteTracksLines(t *testing.T) {
	var c object.Chunk
	c.WriteOp(object.OpNil, 1)
	c.WriteOp(object.OpReturn, 2)

	require.Len(t, c.Code, 2)
	require.Len(t, c.Lines, 2)
	assert.Equal(t, int32(1), c.Lines[0])
	assert.Equal(t, int32(2), c.Lines[1])
}

func TestChunkAddConstant(t *testing.T) {
	var c object.Chunk
	idx, err := c.AddConstant(object.Int(7))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, int64(7), c.Constants[idx].AsInt())

	idx2, err := c.AddConstant(object.Int(8))
	require.NoError(t, err)
	assert.Equal(t, 1, idx2)
}

func TestChunkAddConstantOverflow(t *testing.T) {
	var c object.Chunk
	for i := 0; i < object.MaxConstants; i++ {
		_, err := c.AddConstant(object.Int(int64(i)))
		require.NoError(t, err)
	}
	_, err := c.AddConstant(object.Int(999))
	assert.Error(t, err)
}
