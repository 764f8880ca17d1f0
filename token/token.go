package token

import (
	"strconv"
)

// Token is an operator or keyword of JavaScript as it appears in AST nodes.
type Token int

// String returns the string corresponding to the token.
func (t Token) String() string {
	if t == 0 {
		return "UNKNOWN"
	}
	if t < Token(len(token2string)) && token2string[t] != "" {
		return token2string[t]
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Lookup maps an operator or keyword spelling ("+=", "typeof", "let") to its token.
func Lookup(s string) (Token, bool) {
	t, ok := string2token[s]
	return t, ok
}

// IsAssign reports whether t is "=" or a compound assignment operator.
func (t Token) IsAssign() bool {
	return t >= AddAssign && t <= UnsignedShiftRightAssign || t == Assign ||
		t == LogicalAndAssign || t == LogicalOrAssign || t == CoalesceAssign
}

type keyword struct {
	token Token
	// strict words are only reserved in strict mode code
	strict bool
}

// IsReserved reports whether name cannot be used as a binding identifier.
func IsReserved(name string, strict bool) bool {
	k, ok := keywordTable[name]
	if !ok {
		return false
	}
	if k.strict {
		return strict
	}
	// await is contextual, the resolver checks it on its own
	return k.token != Await && k.token != Async
}
