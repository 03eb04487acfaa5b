package debug_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/hypl/internal/debug"
	"github.com/mna/hypl/lang/compiler"
	"github.com/mna/hypl/lang/object"
	"github.com/mna/hypl/lang/vm"
)

func TestChunkDisassembly(t *testing.T) {
	heap := object.NewHeap()
	fn, errs := compiler.Compile(`print 1 + 2;`, heap, nil)
	require.True(t, errs == nil || errs.Empty())
	require.NotNil(t, fn)

	var out bytes.Buffer
	debug.Chunk(&out, &fn.Chunk, "test chunk")

	got := out.String()
	assert.Contains(t, got, "== test chunk ==")
	assert.Contains(t, got, "OP_CONSTANT")
	assert.Contains(t, got, "OP_ADD")
	assert.Contains(t, got, "OP_PRINT")
}

func TestInstructionAdvancesOffset(t *testing.T) {
	heap := object.NewHeap()
	fn, errs := compiler.Compile(`let x = 1; print x;`, heap, nil)
	require.True(t, errs == nil || errs.Empty())

	var out bytes.Buffer
	offset := 0
	for offset < len(fn.Chunk.Code) {
		next := debug.Instruction(&out, &fn.Chunk, offset)
		assert.Greater(t, next, offset)
		offset = next
	}
}

func TestTracerEmitsStackAndInstruction(t *testing.T) {
	heap := object.NewHeap()
	fn, errs := compiler.Compile(`print 1 + 2;`, heap, nil)
	require.True(t, errs == nil || errs.Empty())

	var trace, stdout, stderr bytes.Buffer
	machine := vm.New(heap, &stdout, &stderr)
	machine.Trace = debug.Tracer(&trace)

	_, err := machine.Interpret(fn)
	require.NoError(t, err)

	got := trace.String()
	assert.Contains(t, got, "[ 1 ]")
	assert.Contains(t, got, "OP_CONSTANT")
}
