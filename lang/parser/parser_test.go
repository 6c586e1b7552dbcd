package parser_test

import (
	"testing"

	"github.com/riicchhaarrd/libgsc/lang/ast"
	"github.com/riicchhaarrd/libgsc/lang/parser"
	"github.com/riicchhaarrd/libgsc/lang/token"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	ch, err := parser.ParseFile("test.gsc", []byte(src))
	require.NoError(t, err)
	return ch
}

func TestParseSimpleFunction(t *testing.T) {
	ch := mustParse(t, `main() { a = 1; b = 2; level.x = a + b; }`)
	require.Len(t, ch.Funcs, 1)
	require.Equal(t, "main", ch.Funcs[0].Name)
	require.Len(t, ch.Funcs[0].Body.Stmts, 3)
}

func TestParseIncludeAndAnimtree(t *testing.T) {
	ch := mustParse(t, `
#include maps\mp\_utility;
#using_animtree("generic_human");
main() {}
`)
	require.Equal(t, []string{`maps\mp\_utility`}, ch.Includes)
	require.Equal(t, "generic_human", ch.AnimTree)
}

func TestParseWaittillAndEndon(t *testing.T) {
	ch := mustParse(t, `
a() {
	self endon("stop");
	self waittill("go", v);
	level.v = v;
}
`)
	body := ch.Funcs[0].Body.Stmts
	require.Len(t, body, 3)
	_, ok := body[0].(*ast.ExprStmt).X.(*ast.MethodCallExpr)
	require.True(t, ok)
}

func TestParseThreadedCallsAndFileQualified(t *testing.T) {
	ch := mustParse(t, `
main() {
	level thread f();
	thread g();
	a::h();
}
`)
	require.Equal(t, []string{"a"}, ch.FileRefs)
	stmts := ch.Funcs[0].Body.Stmts

	m, ok := stmts[0].(*ast.ExprStmt).X.(*ast.MethodCallExpr)
	require.True(t, ok)
	require.True(t, m.Threaded)

	c, ok := stmts[1].(*ast.ExprStmt).X.(*ast.CallExpr)
	require.True(t, ok)
	require.True(t, c.Threaded)
}

func TestParseControlFlow(t *testing.T) {
	ch := mustParse(t, `
main() {
	if (a > b) {
		return a;
	} else if (a == b) {
		return 0;
	} else {
		return b;
	}
	while (1) {
		break;
	}
	for (i = 0; i < 10; i++) {
		continue;
	}
	switch (a) {
		case 1:
		case 2:
			break;
		default:
			break;
	}
}
`)
	require.Len(t, ch.Funcs[0].Body.Stmts, 4)
}

func TestParseVec3AndCompoundAssign(t *testing.T) {
	ch := mustParse(t, `main() { level.origin = (1, 2, 3); a += 1; }`)
	stmts := ch.Funcs[0].Body.Stmts
	assign := stmts[0].(*ast.ExprStmt).X.(*ast.AssignExpr)
	_, ok := assign.Rhs.(*ast.Vec3Lit)
	require.True(t, ok)

	compound := stmts[1].(*ast.ExprStmt).X.(*ast.AssignExpr)
	require.Equal(t, token.PLUS, compound.Op)
}

func TestParseDuplicateFunctionIsError(t *testing.T) {
	_, err := parser.ParseFile("test.gsc", []byte(`f(){} f(){}`))
	require.Error(t, err)
}
