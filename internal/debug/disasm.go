// Package debug renders a human-readable disassembly of a compiled Chunk
// and drives the VM's execution-trace hook (the CLI's `-d` flag): a stack
// snapshot followed by the single instruction about to execute, printed
// before every step.
package debug

import (
	"fmt"
	"io"

	"github.com/mna/hypl/lang/object"
)

// Chunk disassembles every instruction in chunk to w, labeled name.
func Chunk(w io.Writer, chunk *object.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = Instruction(w, chunk, offset)
	}
}

// Instruction disassembles the single instruction at offset to w and
// returns the offset of the next instruction.
func Instruction(w io.Writer, chunk *object.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", chunk.Lines[offset])
	}

	op := object.OpCode(chunk.Code[offset])
	switch op {
	case object.OpConstant, object.OpGetGlobal, object.OpDefineGlobal, object.OpSetGlobal,
		object.OpClass, object.OpMethod, object.OpGetProperty, object.OpSetProperty,
		object.OpImportModule, object.OpImportStd:
		return constantInstruction(w, op, chunk, offset)

	case object.OpGetLocal, object.OpSetLocal, object.OpGetUpvalue, object.OpSetUpvalue,
		object.OpCall, object.OpBuildList:
		return byteInstruction(w, op, chunk, offset)

	case object.OpJump, object.OpJumpIfFalse:
		return jumpInstruction(w, op, 1, chunk, offset)
	case object.OpLoop:
		return jumpInstruction(w, op, -1, chunk, offset)

	case object.OpInvoke:
		return invokeInstruction(w, op, chunk, offset)

	case object.OpClosure:
		return closureInstruction(w, chunk, offset)

	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}

func constantInstruction(w io.Writer, op object.OpCode, chunk *object.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-18s %4d '%s'\n", op, idx, chunk.Constants[idx].String())
	return offset + 2
}

func byteInstruction(w io.Writer, op object.OpCode, chunk *object.Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-18s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(w io.Writer, op object.OpCode, sign int, chunk *object.Chunk, offset int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	fmt.Fprintf(w, "%-18s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

func invokeInstruction(w io.Writer, op object.OpCode, chunk *object.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	argc := chunk.Code[offset+2]
	fmt.Fprintf(w, "%-18s (%d args) %4d '%s'\n", op, argc, idx, chunk.Constants[idx].String())
	return offset + 3
}

func closureInstruction(w io.Writer, chunk *object.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	offset += 2
	fmt.Fprintf(w, "%-18s %4d '%s'\n", object.OpClosure, idx, chunk.Constants[idx].String())

	fn, ok := chunk.Constants[idx].AsObj().(*object.ObjFunction)
	if !ok {
		return offset
	}
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		kind := "upvalue"
		if isLocal == 1 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset, kind, index)
		offset += 2
	}
	return offset
}
