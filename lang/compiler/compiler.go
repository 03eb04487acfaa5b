// Package compiler implements the single-pass Pratt parser and bytecode
// code generator: there is no intermediate AST. Expression and statement
// grammar productions emit opcodes directly into the Chunk of the
// object.ObjFunction under construction as parsing proceeds, rather than
// building an AST to resolve and assemble afterward.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/mna/hypl/lang/object"
	"github.com/mna/hypl/lang/scanner"
	"github.com/mna/hypl/lang/token"
)

// Precedence levels for the Pratt table, lowest to highest.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssign
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type rule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// FunctionType distinguishes the implicit top-level script, a plain
// function, a method, and an initializer (whose implicit return differs).
type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
	TypeMethod
	TypeInitializer
)

const (
	maxLocals   = 256
	maxUpvalues = 256
	maxArgs     = 255
	maxParams   = 255
)

// local is a compile-time local-variable slot.
type local struct {
	name       string
	depth      int // -1 while the initializer is still being compiled
	isCaptured bool
}

// upvalueRef records how a function's upvalue slot N is populated when an
// OP_CLOSURE is executed: either by copying the enclosing frame's local at
// index (isLocal), or by copying the enclosing closure's own upvalue at
// index.
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// frame is the compile-time state for a single function body being
// compiled, linked to its lexically enclosing frame.
type frame struct {
	enclosing *frame
	function  *object.ObjFunction
	typ       FunctionType

	locals     [maxLocals]local
	localCount int
	upvalues   [maxUpvalues]upvalueRef
	scopeDepth int
}

// classCompiler tracks nested class declarations, so `this` resolves
// correctly and future metaprogramming (e.g. inheritance) has a place to
// hang enclosing-class state.
type classCompiler struct {
	enclosing *classCompiler
}

// Compiler is the single-pass compiler: it owns the scanner, a one-token
// lookahead, and the stack of in-progress function frames and class
// compilers.
type Compiler struct {
	heap    *object.Heap
	scanner *scanner.Scanner

	prev, cur token.TokenValue
	lexErr    *scanner.Error

	hadError  bool
	panicMode bool
	errs      ErrorList

	current *frame
	class   *classCompiler

	importer Importer
	modules  map[string]bool // modules currently being inlined, for cycle detection
}

// Compile compiles source into a top-level (script) function. All string
// and function objects it allocates are tracked on heap, which is also
// where AllocateString dedupes against the live intern table. On any
// compile error, Compile returns a nil function and a non-nil *ErrorList.
//
// importer resolves `import <name>;` statements (not `import std <name>;`,
// which never touches the filesystem); it may be nil if the source is known
// not to use plain imports.
func Compile(source string, heap *object.Heap, importer Importer) (*object.ObjFunction, *ErrorList) {
	c := &Compiler{heap: heap, scanner: scanner.New([]byte(source)), importer: importer}

	heap.AddRoot(c)
	defer heap.RemoveRoot(c)

	c.pushFrame(TypeScript, "")
	c.advance()
	for !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "expected end of expression")
	fn := c.endFrame()

	if c.hadError {
		return nil, &c.errs
	}
	return fn, nil
}

// MarkRoots implements object.RootMarker: every in-progress function object
// (reachable only through this compiler's frame chain, not yet through any
// VM root) must survive a collection triggered mid-compile.
func (c *Compiler) MarkRoots(mark func(object.Value)) {
	for fr := c.current; fr != nil; fr = fr.enclosing {
		mark(object.FromObj(fr.function))
	}
}

// ---- token stream -----------------------------------------------------

func (c *Compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.scanner.Scan()
		if c.cur.Kind != token.ILLEGAL {
			break
		}
		c.lexErr = c.scanner.LastError()
		msg := "unexpected character"
		if c.lexErr != nil {
			msg = c.lexErr.Msg
		}
		c.errorAtCurrent(LexError, msg)
	}
}

func (c *Compiler) check(t token.Token) bool { return c.cur.Kind == t }

func (c *Compiler) match(t token.Token) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Token, msg string) {
	if c.cur.Kind == t {
		c.advance()
		return
	}
	c.errorAtCurrent(ExpectToken, msg)
}

// ---- error reporting ----------------------------------------------------

func (c *Compiler) errorAt(tv token.TokenValue, kind ErrorKind, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	c.errs.add(&Error{Kind: kind, Line: tv.Line, Lexeme: tv.Lexeme, Msg: msg})
}

func (c *Compiler) error(kind ErrorKind, msg string)          { c.errorAt(c.prev, kind, msg) }
func (c *Compiler) errorAtCurrent(kind ErrorKind, msg string) { c.errorAt(c.cur, kind, msg) }

// synchronize discards tokens until it reaches a likely statement boundary,
// so a single syntax error does not cascade.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.cur.Kind != token.EOF {
		if c.prev.Kind == token.SEMICOLON {
			return
		}
		switch c.cur.Kind {
		case token.CLASS, token.FUN, token.LET, token.FOR, token.IF,
			token.WHILE, token.PRINT, token.WRITE, token.RETURN, token.IMPORT:
			return
		}
		c.advance()
	}
}

// ---- bytecode emission --------------------------------------------------

func (c *Compiler) chunk() *object.Chunk { return &c.current.function.Chunk }

func (c *Compiler) emit(b byte)             { c.chunk().Write(b, c.prev.Line) }
func (c *Compiler) emitOp(op object.OpCode) { c.chunk().WriteOp(op, c.prev.Line) }

func (c *Compiler) emitOps(a, b object.OpCode) {
	c.emitOp(a)
	c.emitOp(b)
}

func (c *Compiler) emitByteOp(op object.OpCode, operand byte) {
	c.emitOp(op)
	c.emit(operand)
}

func (c *Compiler) makeConstant(v object.Value) byte {
	idx, err := c.chunk().AddConstant(v)
	if err != nil {
		c.error(TooManyConstants, err.Error())
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v object.Value) {
	c.emitByteOp(object.OpConstant, c.makeConstant(v))
}

// internConstant allocates (or reuses) an interned string on the heap and
// returns its constant-pool index.
func (c *Compiler) internConstant(s string) byte {
	return c.makeConstant(object.FromObj(c.heap.AllocateString(s)))
}

// emitJump emits a jump opcode with a placeholder u16 operand and returns
// the offset to patch.
func (c *Compiler) emitJump(op object.OpCode) int {
	c.emitOp(op)
	c.emit(0xff)
	c.emit(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error(JumpTooLarge, "too much code to jump over")
		return
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(object.OpLoop)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error(LoopBodyTooLarge, "loop body too large")
		return
	}
	c.emit(byte(offset >> 8))
	c.emit(byte(offset))
}

func (c *Compiler) emitReturn() {
	if c.current.typ == TypeInitializer {
		c.emitByteOp(object.OpGetLocal, 0)
	} else {
		c.emitOp(object.OpNil)
	}
	c.emitOp(object.OpReturn)
}

// ---- frame management ----------------------------------------------------

func (c *Compiler) pushFrame(typ FunctionType, name string) {
	fn := c.heap.AllocateFunction()
	if typ != TypeScript {
		fn.Name = c.heap.AllocateString(name)
	}

	fr := &frame{enclosing: c.current, function: fn, typ: typ}
	c.current = fr

	// Slot 0 is reserved for the receiver ("this" for methods/initializers,
	// unnamed for plain functions and the script).
	slotName := ""
	if typ == TypeMethod || typ == TypeInitializer {
		slotName = "this"
	}
	fr.locals[0] = local{name: slotName, depth: 0}
	fr.localCount = 1
}

func (c *Compiler) endFrame() *object.ObjFunction {
	c.emitReturn()
	fn := c.current.function
	c.current = c.current.enclosing
	return fn
}

// ---- scopes ----------------------------------------------------------------

func (c *Compiler) beginScope() { c.current.scopeDepth++ }

func (c *Compiler) endScope() {
	c.current.scopeDepth--
	fr := c.current
	for fr.localCount > 0 && fr.locals[fr.localCount-1].depth > fr.scopeDepth {
		if fr.locals[fr.localCount-1].isCaptured {
			c.emitOp(object.OpCloseUpvalue)
		} else {
			c.emitOp(object.OpPop)
		}
		fr.localCount--
	}
}

// ---- variable declaration and resolution -----------------------------------

func (c *Compiler) identifierConstant(name string) byte { return c.internConstant(name) }

func (c *Compiler) addLocal(name string) {
	fr := c.current
	if fr.localCount >= maxLocals {
		c.error(TooManyLocals, "too many local variables in function")
		return
	}
	fr.locals[fr.localCount] = local{name: name, depth: -1}
	fr.localCount++
}

func (c *Compiler) declareVariable(name string) {
	fr := c.current
	if fr.scopeDepth == 0 {
		return // globals are late-bound, not declared as locals
	}
	for i := fr.localCount - 1; i >= 0; i-- {
		l := &fr.locals[i]
		if l.depth != -1 && l.depth < fr.scopeDepth {
			break
		}
		if l.name == name {
			c.error(VariableAlreadyDeclared, fmt.Sprintf("variable %q already declared in this scope", name))
		}
	}
	c.addLocal(name)
}

func (c *Compiler) markInitialized() {
	if c.current.scopeDepth == 0 {
		return
	}
	c.current.locals[c.current.localCount-1].depth = c.current.scopeDepth
}

// parseVariable consumes an identifier, declares it if local, and returns
// the constant-pool index to use with DEFINE_GLOBAL (0 if local).
func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.IDENT, errMsg)
	name := c.prev.Lexeme
	c.declareVariable(name)
	if c.current.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) defineVariable(global byte) {
	if c.current.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitByteOp(object.OpDefineGlobal, global)
}

func (c *Compiler) resolveLocal(fr *frame, name string) int {
	for i := fr.localCount - 1; i >= 0; i-- {
		l := &fr.locals[i]
		if l.name == name {
			if l.depth == -1 {
				c.error(ReadInOwnInitializer, fmt.Sprintf("cannot read local variable %q in its own initializer", name))
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) addUpvalue(fr *frame, index uint8, isLocal bool) int {
	for i := 0; i < fr.function.UpvalueCount; i++ {
		uv := fr.upvalues[i]
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if fr.function.UpvalueCount >= maxUpvalues {
		c.error(TooManyUpvalues, "too many closure variables in function")
		return 0
	}
	fr.upvalues[fr.function.UpvalueCount] = upvalueRef{index: index, isLocal: isLocal}
	fr.function.UpvalueCount++
	return fr.function.UpvalueCount - 1
}

func (c *Compiler) resolveUpvalue(fr *frame, name string) int {
	if fr.enclosing == nil {
		return -1
	}
	if loc := c.resolveLocal(fr.enclosing, name); loc != -1 {
		fr.enclosing.locals[loc].isCaptured = true
		return c.addUpvalue(fr, uint8(loc), true)
	}
	if up := c.resolveUpvalue(fr.enclosing, name); up != -1 {
		return c.addUpvalue(fr, uint8(up), false)
	}
	return -1
}

// ---- declarations and statements -------------------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.match(token.LET):
		c.letDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.CLASS):
		c.classDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) letDeclaration() {
	global := c.parseVariable("expected variable name")
	if c.match(token.EQ) {
		c.expression()
	} else {
		c.emitOp(object.OpNil)
	}
	c.consume(token.SEMICOLON, "expected ';' after variable declaration")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("expected function name")
	c.markInitialized()
	c.function(TypeFunction)
	c.defineVariable(global)
}

func (c *Compiler) function(typ FunctionType) {
	name := c.prev.Lexeme
	c.pushFrame(typ, name)
	c.beginScope()

	c.consume(token.LPAREN, "expected '(' after function name")
	if !c.check(token.RPAREN) {
		for {
			c.current.function.Arity++
			if c.current.function.Arity > maxParams {
				c.error(TooManyParameters, "too many parameters")
			}
			paramConst := c.parseVariable("expected parameter name")
			c.defineVariable(paramConst)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expected ')' after parameters")
	c.consume(token.LBRACE, "expected '{' before function body")
	c.block()

	upvalues := c.current.upvalues
	fn := c.endFrame()

	c.emitByteOp(object.OpClosure, c.makeConstant(object.FromObj(fn)))
	for i := 0; i < fn.UpvalueCount; i++ {
		if upvalues[i].isLocal {
			c.emit(1)
		} else {
			c.emit(0)
		}
		c.emit(upvalues[i].index)
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, "expected class name")
	className := c.prev.Lexeme
	nameConst := c.identifierConstant(className)
	c.declareVariable(className)

	c.emitByteOp(object.OpClass, nameConst)
	c.defineVariable(nameConst)

	cc := &classCompiler{enclosing: c.class}
	c.class = cc

	c.namedVariable(className, false)
	c.consume(token.LBRACE, "expected '{' before class body")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "expected '}' after class body")
	c.emitOp(object.OpPop) // discard the class value namedVariable pushed

	c.class = cc.enclosing
}

func (c *Compiler) method() {
	c.consume(token.IDENT, "expected method name")
	name := c.prev.Lexeme
	nameConst := c.identifierConstant(name)

	typ := TypeMethod
	if name == "init" {
		typ = TypeInitializer
	}
	c.function(typ)
	c.emitByteOp(object.OpMethod, nameConst)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement(object.OpPrint)
	case c.match(token.WRITE):
		c.printStatement(object.OpPrintNoLine)
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.IMPORT):
		c.importStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement(op object.OpCode) {
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after value")
	c.emitOp(op)
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "expected '}' after block")
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after expression")
	c.emitOp(object.OpPop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "expected '(' after 'if'")
	c.expression()
	c.consume(token.RPAREN, "expected ')' after condition")

	thenJump := c.emitJump(object.OpJumpIfFalse)
	c.emitOp(object.OpPop)
	c.statement()

	elseJump := c.emitJump(object.OpJump)
	c.patchJump(thenJump)
	c.emitOp(object.OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.consume(token.LPAREN, "expected '(' after 'while'")
	c.expression()
	c.consume(token.RPAREN, "expected ')' after condition")

	exitJump := c.emitJump(object.OpJumpIfFalse)
	c.emitOp(object.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(object.OpPop)
}

// forStatement desugars `for (init; cond; step) body` to init followed by a
// while loop whose body runs the user's body and then the step, so the step
// always executes before the condition is rechecked.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "expected '(' after 'for'")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.LET):
		c.letDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.check(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "expected ';' after loop condition")
		exitJump = c.emitJump(object.OpJumpIfFalse)
		c.emitOp(object.OpPop)
	} else {
		c.advance() // consume ';'
	}

	if !c.check(token.RPAREN) {
		bodyJump := c.emitJump(object.OpJump)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(object.OpPop)
		c.consume(token.RPAREN, "expected ')' after for clauses")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.advance() // consume ')'
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(object.OpPop)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.current.typ == TypeScript {
		c.error(CantReturnTopLevel, "cannot return from top-level code")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.current.typ == TypeInitializer {
		c.error(CantReturnFromInitializer, "cannot return a value from an initializer")
	}
	c.expression()
	c.consume(token.SEMICOLON, "expected ';' after return value")
	c.emitOp(object.OpReturn)
}

func (c *Compiler) importStatement() {
	if c.match(token.STD) {
		c.consume(token.IDENT, "expected module name")
		nameConst := c.identifierConstant(c.prev.Lexeme)
		c.consume(token.SEMICOLON, "expected ';' after import")
		c.emitByteOp(object.OpImportStd, nameConst)
		return
	}

	c.consume(token.IDENT, "expected module name")
	name := c.prev.Lexeme
	c.consume(token.SEMICOLON, "expected ';' after import")
	c.inlineModule(name)
}

// inlineModule implements the inline-substitution import model: the target
// module's source is read, compiled as a nested zero-argument function, and
// called immediately at the point of the import statement. The compiler
// never emits IMPORT_MODULE; by the time the VM runs this chunk the import
// is just a CLOSURE+CALL+POP sequence.
func (c *Compiler) inlineModule(name string) {
	if c.importer == nil {
		c.error(ModuleNotFound, fmt.Sprintf("cannot resolve module %q: no importer configured", name))
		return
	}
	if c.modules[name] {
		c.error(ModuleNotFound, fmt.Sprintf("import cycle detected for module %q", name))
		return
	}
	src, err := c.importer.ReadModule(name)
	if err != nil {
		c.error(ModuleNotFound, err.Error())
		return
	}

	modules := c.modules
	if modules == nil {
		modules = make(map[string]bool)
	}
	modules[name] = true

	sub := &Compiler{
		heap:     c.heap,
		scanner:  scanner.New([]byte(src)),
		importer: c.importer,
		modules:  modules,
	}
	c.heap.AddRoot(sub)
	sub.pushFrame(TypeFunction, name)
	sub.advance()
	for !sub.check(token.EOF) {
		sub.declaration()
	}
	sub.consume(token.EOF, "expected end of module")
	fn := sub.endFrame()
	c.heap.RemoveRoot(sub)

	if sub.hadError {
		c.hadError = true
		c.errs.Errors = append(c.errs.Errors, sub.errs.Errors...)
		return
	}

	c.emitByteOp(object.OpClosure, c.makeConstant(object.FromObj(fn)))
	for i := 0; i < fn.UpvalueCount; i++ {
		// A module's top-level scope has no enclosing frame, so it never
		// captures anything; this loop only runs if that invariant is broken.
		c.emit(0)
		c.emit(0)
	}
	c.emitByteOp(object.OpCall, 0)
	c.emitOp(object.OpPop)
}

// ---- expressions ------------------------------------------------------------

func (c *Compiler) expression() { c.parsePrecedence(PrecAssign) }

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefixRule := rules[c.prev.Kind].prefix
	if prefixRule == nil {
		c.error(ExpectExpression, "expected expression")
		return
	}

	canAssign := prec <= PrecAssign
	prefixRule(c, canAssign)

	for prec <= rules[c.cur.Kind].precedence {
		c.advance()
		infixRule := rules[c.prev.Kind].infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(token.EQ) {
		c.error(InvalidAssignmentTarget, "invalid assignment target")
	}
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp object.OpCode
	arg := c.resolveLocal(c.current, name)
	if arg != -1 {
		getOp, setOp = object.OpGetLocal, object.OpSetLocal
	} else if arg = c.resolveUpvalue(c.current, name); arg != -1 {
		getOp, setOp = object.OpGetUpvalue, object.OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = object.OpGetGlobal, object.OpSetGlobal
	}

	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitByteOp(setOp, byte(arg))
	} else {
		c.emitByteOp(getOp, byte(arg))
	}
}

func parseNumber(c *Compiler, _ bool) {
	lex := c.prev.Lexeme
	if c.prev.Kind == token.INT {
		i, err := strconv.ParseInt(lex, 10, 64)
		if err != nil {
			c.error(ExpectExpression, "invalid integer literal")
			return
		}
		c.emitConstant(object.Int(i))
		return
	}
	d, err := strconv.ParseFloat(lex, 64)
	if err != nil {
		c.error(ExpectExpression, "invalid double literal")
		return
	}
	c.emitConstant(object.Double(d))
}

func parseString(c *Compiler, _ bool) {
	c.emitConstant(object.FromObj(c.heap.AllocateString(c.prev.Lexeme)))
}

func parseLiteral(c *Compiler, _ bool) {
	switch c.prev.Kind {
	case token.TRUE:
		c.emitOp(object.OpTrue)
	case token.FALSE:
		c.emitOp(object.OpFalse)
	case token.NIL:
		c.emitOp(object.OpNil)
	}
}

func parseGrouping(c *Compiler, _ bool) {
	c.expression()
	c.consume(token.RPAREN, "expected ')' after expression")
}

func parseVariableExpr(c *Compiler, canAssign bool) {
	c.namedVariable(c.prev.Lexeme, canAssign)
}

func parseThis(c *Compiler, _ bool) {
	if c.class == nil {
		c.error(ThisOutsideClass, "cannot use 'this' outside of a class method")
		return
	}
	c.namedVariable("this", false)
}

func parseUnary(c *Compiler, _ bool) {
	op := c.prev.Kind
	c.parsePrecedence(PrecUnary)
	switch op {
	case token.MINUS:
		c.emitOp(object.OpNegate)
	case token.BANG:
		c.emitOp(object.OpNot)
	}
}

func parseBinary(c *Compiler, _ bool) {
	op := c.prev.Kind
	r := rules[op]
	c.parsePrecedence(r.precedence + 1)

	switch op {
	case token.PLUS:
		c.emitOp(object.OpAdd)
	case token.MINUS:
		c.emitOp(object.OpSubtract)
	case token.STAR:
		c.emitOp(object.OpMultiply)
	case token.SLASH:
		c.emitOp(object.OpDivide)
	case token.PERCENT:
		c.emitOp(object.OpModulo)
	case token.CIRCUMFLEX:
		c.emitOp(object.OpPower)
	case token.EQ_EQ:
		c.emitOp(object.OpEqual)
	case token.BANG_EQ:
		c.emitOps(object.OpEqual, object.OpNot)
	case token.GT:
		c.emitOp(object.OpGreater)
	case token.GT_EQ:
		c.emitOps(object.OpLess, object.OpNot)
	case token.LT:
		c.emitOp(object.OpLess)
	case token.LT_EQ:
		c.emitOps(object.OpGreater, object.OpNot)
	}
}

func parseAnd(c *Compiler, _ bool) {
	endJump := c.emitJump(object.OpJumpIfFalse)
	c.emitOp(object.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func parseOr(c *Compiler, _ bool) {
	elseJump := c.emitJump(object.OpJumpIfFalse)
	endJump := c.emitJump(object.OpJump)
	c.patchJump(elseJump)
	c.emitOp(object.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) argumentList() byte {
	var argc int
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			argc++
			if argc > maxArgs {
				c.error(TooManyArguments, "cannot pass more than 255 arguments")
			}
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "expected ')' after arguments")
	return byte(argc)
}

func parseCall(c *Compiler, _ bool) {
	argc := c.argumentList()
	c.emitByteOp(object.OpCall, argc)
}

func parseDot(c *Compiler, canAssign bool) {
	c.consume(token.IDENT, "expected property name after '.'")
	nameConst := c.identifierConstant(c.prev.Lexeme)

	switch {
	case canAssign && c.match(token.EQ):
		c.expression()
		c.emitByteOp(object.OpSetProperty, nameConst)
	case c.match(token.LPAREN):
		argc := c.argumentList()
		c.emitOp(object.OpInvoke)
		c.emit(nameConst)
		c.emit(argc)
	default:
		c.emitByteOp(object.OpGetProperty, nameConst)
	}
}

func parseIndex(c *Compiler, canAssign bool) {
	c.expression()
	c.consume(token.RBRACK, "expected ']' after index")
	if canAssign && c.match(token.EQ) {
		c.expression()
		c.emitOp(object.OpStoreSubscr)
	} else {
		c.emitOp(object.OpIndexSubscr)
	}
}

func parseList(c *Compiler, _ bool) {
	var n int
	if !c.check(token.RBRACK) {
		for {
			c.expression()
			n++
			if n > 255 {
				c.error(TooManyArguments, "list literal too large")
			}
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RBRACK, "expected ']' after list elements")
	c.emitByteOp(object.OpBuildList, byte(n))
}

// incDec compiles the desugared `inc x` / `dec x` statement-as-expression:
// read x, add/subtract 1, store back into x.
func incDec(c *Compiler, delta int64) {
	c.consume(token.IDENT, "expected variable name")
	name := c.prev.Lexeme

	var getOp, setOp object.OpCode
	arg := c.resolveLocal(c.current, name)
	if arg != -1 {
		getOp, setOp = object.OpGetLocal, object.OpSetLocal
	} else if arg = c.resolveUpvalue(c.current, name); arg != -1 {
		getOp, setOp = object.OpGetUpvalue, object.OpSetUpvalue
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = object.OpGetGlobal, object.OpSetGlobal
	}

	c.emitByteOp(getOp, byte(arg))
	c.emitConstant(object.Int(delta))
	c.emitOp(object.OpAdd)
	c.emitByteOp(setOp, byte(arg))
}

func parseInc(c *Compiler, _ bool) { incDec(c, 1) }
func parseDec(c *Compiler, _ bool) { incDec(c, -1) }

var rules map[token.Token]rule

func init() {
	rules = map[token.Token]rule{
		token.LPAREN:     {parseGrouping, parseCall, PrecCall},
		token.DOT:        {nil, parseDot, PrecCall},
		token.LBRACK:     {parseList, parseIndex, PrecCall},
		token.MINUS:      {parseUnary, parseBinary, PrecTerm},
		token.PLUS:       {nil, parseBinary, PrecTerm},
		token.SLASH:      {nil, parseBinary, PrecFactor},
		token.STAR:       {nil, parseBinary, PrecFactor},
		token.PERCENT:    {nil, parseBinary, PrecFactor},
		token.CIRCUMFLEX:  {nil, parseBinary, PrecFactor},
		token.BANG:       {parseUnary, nil, PrecNone},
		token.BANG_EQ:    {nil, parseBinary, PrecEquality},
		token.EQ_EQ:      {nil, parseBinary, PrecEquality},
		token.GT:         {nil, parseBinary, PrecComparison},
		token.GT_EQ:      {nil, parseBinary, PrecComparison},
		token.LT:         {nil, parseBinary, PrecComparison},
		token.LT_EQ:      {nil, parseBinary, PrecComparison},
		token.IDENT:      {parseVariableExpr, nil, PrecNone},
		token.STRING:     {parseString, nil, PrecNone},
		token.INT:        {parseNumber, nil, PrecNone},
		token.FLOAT:      {parseNumber, nil, PrecNone},
		token.AND:        {nil, parseAnd, PrecAnd},
		token.OR:         {nil, parseOr, PrecOr},
		token.FALSE:      {parseLiteral, nil, PrecNone},
		token.TRUE:       {parseLiteral, nil, PrecNone},
		token.NIL:        {parseLiteral, nil, PrecNone},
		token.THIS:       {parseThis, nil, PrecNone},
		token.INC:        {parseInc, nil, PrecNone},
		token.DEC:        {parseDec, nil, PrecNone},
	}
}
