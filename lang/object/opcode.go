package object

// OpCode is a single-byte bytecode instruction. Operand widths are
// implicit in the opcode.
type OpCode uint8

//nolint:revive
const (
	OpConstant OpCode = iota // u8 idx -> push pool[idx]
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal  // u8 slot
	OpSetLocal  // u8 slot
	OpGetGlobal // u8 nameIdx
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue // u8 slot
	OpSetUpvalue // u8 slot
	OpCloseUpvalue
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpNot
	OpNegate
	OpPrint        // print with trailing newline
	OpPrintNoLine  // print without trailing newline (PRINT_TOLINE)
	OpJump         // u16 offset, forward
	OpJumpIfFalse  // u16 offset, forward; leaves condition on stack
	OpLoop         // u16 offset, backward
	OpCall         // u8 argc
	OpInvoke       // u8 nameIdx, u8 argc
	OpClosure      // u8 constIdx, then 2*N bytes (isLocal,index)
	OpReturn
	OpClass   // u8 nameIdx
	OpMethod  // u8 nameIdx
	OpGetProperty // u8 nameIdx
	OpSetProperty // u8 nameIdx
	OpBuildList   // u8 n
	OpIndexSubscr
	OpStoreSubscr
	OpImportModule // u8 nameIdx; reserved: the compiler resolves plain imports
	// by inlining a nested CLOSURE+CALL instead of emitting this opcode
	OpImportStd // u8 nameIdx

	opCodeCount
)

var opcodeNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpModulo:       "OP_MODULO",
	OpPower:        "OP_POWER",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpPrintNoLine:  "OP_PRINT_TOLINE",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpInvoke:       "OP_INVOKE",
	OpClosure:      "OP_CLOSURE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
	OpMethod:       "OP_METHOD",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpBuildList:    "OP_BUILD_LIST",
	OpIndexSubscr:  "OP_INDEX_SUBSCR",
	OpStoreSubscr:  "OP_STORE_SUBSCR",
	OpImportModule: "OP_IMPORT_MODULE",
	OpImportStd:    "OP_IMPORT_STD",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "OP_UNKNOWN"
}
