package compiler

import "fmt"

// ErrorKind enumerates the compile-time error conditions a Compiler reports.
type ErrorKind int

const (
	ExpectExpression ErrorKind = iota + 1
	ExpectToken
	InvalidAssignmentTarget
	TooManyConstants
	TooManyLocals
	TooManyUpvalues
	VariableAlreadyDeclared
	ReadInOwnInitializer
	LoopBodyTooLarge
	JumpTooLarge
	CantReturnTopLevel
	CantReturnFromInitializer
	TooManyArguments
	TooManyParameters
	ThisOutsideClass
	LexError
	ModuleNotFound
)

// Error is a single compile error: where it happened (line, and the
// offending lexeme when known) and what kind of failure it was.
type Error struct {
	Kind   ErrorKind
	Line   int
	Lexeme string
	Msg    string
}

func (e *Error) Error() string {
	if e.Lexeme != "" {
		return fmt.Sprintf("[ERROR | %d line] at '%s': %s", e.Line, e.Lexeme, e.Msg)
	}
	return fmt.Sprintf("[ERROR | %d line]: %s", e.Line, e.Msg)
}

// ErrorList collects every error produced by a single compilation. It
// implements error so a *ErrorList can be returned directly; a nil
// *ErrorList (zero errors) must never be returned as a non-nil error.
type ErrorList struct {
	Errors []*Error
}

func (el *ErrorList) add(e *Error) { el.Errors = append(el.Errors, e) }

func (el *ErrorList) Error() string {
	if len(el.Errors) == 0 {
		return "no errors"
	}
	s := el.Errors[0].Error()
	if len(el.Errors) > 1 {
		s += fmt.Sprintf(" (and %d more error(s))", len(el.Errors)-1)
	}
	return s
}

// Empty reports whether no errors were recorded.
func (el *ErrorList) Empty() bool { return len(el.Errors) == 0 }
