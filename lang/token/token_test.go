package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := ILLEGAL; tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String())
	}
}

func TestTokenGoStringQuotesPunctuation(t *testing.T) {
	require.Equal(t, "'+'", PLUS.GoString())
	require.Equal(t, "identifier", IDENT.GoString())
}

func TestKeywords(t *testing.T) {
	require.Equal(t, IF, Keywords["if"])
	require.Equal(t, WAITTILLFRAMEEND, Keywords["waittillframeend"])
	_, ok := Keywords["notakeyword"]
	require.False(t, ok)
}

func TestCompoundOp(t *testing.T) {
	op, ok := PLUS_EQ.CompoundOp()
	require.True(t, ok)
	require.Equal(t, PLUS, op)

	_, ok = EQ.CompoundOp()
	require.False(t, ok)
}
