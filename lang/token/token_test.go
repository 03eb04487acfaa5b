package token

import "testing"

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestTokenGoString(t *testing.T) {
	if got, want := PLUS.GoString(), "'+'"; got != want {
		t.Errorf("GoString(PLUS) = %q, want %q", got, want)
	}
	if got, want := IDENT.GoString(), "identifier"; got != want {
		t.Errorf("GoString(IDENT) = %q, want %q", got, want)
	}
}

func TestLookup(t *testing.T) {
	cases := []struct {
		ident string
		want  Token
	}{
		{"class", CLASS},
		{"fun", FUN},
		{"def", FUN},
		{"dec", DEC},
		{"decr", DEC},
		{"notakeyword", IDENT},
		{"", IDENT},
	}
	for _, c := range cases {
		if got := Lookup(c.ident); got != c.want {
			t.Errorf("Lookup(%q) = %v, want %v", c.ident, got, c.want)
		}
	}
}

func TestTokenValueString(t *testing.T) {
	tv := TokenValue{Kind: IDENT, Lexeme: "x", Line: 1}
	if got, want := tv.String(), "x"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	tv = TokenValue{Kind: SEMICOLON, Line: 1}
	if got, want := tv.String(), SEMICOLON.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
