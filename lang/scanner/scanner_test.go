package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/hypl/lang/scanner"
	"github.com/mna/hypl/lang/token"
)

func scanAll(t *testing.T, src string) []token.TokenValue {
	t.Helper()
	s := scanner.New([]byte(src))
	var toks []token.TokenValue
	for {
		tv := s.Scan()
		toks = append(toks, tv)
		if tv.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestScanPunctuationAndKeywords(t *testing.T) {
	toks := scanAll(t, `let x = 1 + 2 * 3; print x;`)
	kinds := make([]token.Token, 0, len(toks))
	for _, tv := range toks {
		kinds = append(kinds, tv.Kind)
	}
	require.Equal(t, []token.Token{
		token.LET, token.IDENT, token.EQ, token.INT, token.PLUS, token.INT,
		token.STAR, token.INT, token.SEMICOLON, token.PRINT, token.IDENT,
		token.SEMICOLON, token.EOF,
	}, kinds)
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, `1 1.5 10`)
	require.Equal(t, token.INT, toks[0].Kind)
	require.Equal(t, "1", toks[0].Lexeme)
	require.Equal(t, token.FLOAT, toks[1].Kind)
	require.Equal(t, "1.5", toks[1].Lexeme)
	require.Equal(t, token.INT, toks[2].Kind)
}

func TestScanString(t *testing.T) {
	toks := scanAll(t, `"hello there"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "hello there", toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	s := scanner.New([]byte(`"oops`))
	tv := s.Scan()
	require.Equal(t, token.ILLEGAL, tv.Kind)
	require.NotNil(t, s.LastError())
	require.Equal(t, scanner.UnterminatedString, s.LastError().Kind)
}

func TestScanUnexpectedChar(t *testing.T) {
	s := scanner.New([]byte("`"))
	tv := s.Scan()
	require.Equal(t, token.ILLEGAL, tv.Kind)
	require.Equal(t, scanner.UnexpectedChar, s.LastError().Kind)
}

func TestScanLineTracking(t *testing.T) {
	toks := scanAll(t, "let x = 1;\nlet y = 2;")
	require.Equal(t, 1, toks[0].Line)
	// find the second "let"
	var secondLet token.TokenValue
	count := 0
	for _, tv := range toks {
		if tv.Kind == token.LET {
			count++
			if count == 2 {
				secondLet = tv
			}
		}
	}
	require.Equal(t, 2, secondLet.Line)
}

func TestScanNamespacedIdentifier(t *testing.T) {
	toks := scanAll(t, `math:floor`)
	require.Equal(t, token.IDENT, toks[0].Kind)
	require.Equal(t, "math:floor", toks[0].Lexeme)
}

func TestScanComment(t *testing.T) {
	toks := scanAll(t, "let x = 1; // trailing comment\nlet y = 2;")
	require.Equal(t, token.LET, toks[0].Kind)
}
