package compiler_test

import (
	"strings"
	"testing"

	"github.com/riicchhaarrd/libgsc/lang/arena"
	"github.com/riicchhaarrd/libgsc/lang/compiler"
	"github.com/riicchhaarrd/libgsc/lang/parser"
	"github.com/stretchr/testify/require"
)

func compileSrc(t *testing.T, src string) *compiler.CompiledFile {
	t.Helper()
	ch, err := parser.ParseFile("test.gsc", []byte(src))
	require.NoError(t, err)
	a := arena.New("test", 4096)
	strs := arena.NewStrings(a)
	cf := compiler.CompileFile(ch, strs)
	require.Empty(t, cf.Errors)
	require.Equal(t, compiler.Done, cf.State)
	return cf
}

func TestCompileArithmeticAndReturn(t *testing.T) {
	cf := compileSrc(t, `f(a, b) { return a + b * 2; }`)
	fn := cf.Functions["f"]
	require.NotNil(t, fn)
	require.Equal(t, 2, fn.NumParams)

	dis := compiler.Disassemble(fn)
	require.Contains(t, dis, "local")
	require.Contains(t, dis, "mul")
	require.Contains(t, dis, "add")
	require.Contains(t, dis, "return")
}

func TestCompileIfElse(t *testing.T) {
	cf := compileSrc(t, `f(a) { if (a) { return 1; } else { return 2; } }`)
	fn := cf.Functions["f"]
	dis := compiler.Disassemble(fn)
	require.Contains(t, dis, "cjmpf")
	require.Contains(t, dis, "jmp")
}

func TestCompileWhileBreakContinue(t *testing.T) {
	cf := compileSrc(t, `
	f(n) {
		i = 0;
		while (i < n) {
			if (i == 1) { i += 1; continue; }
			if (i == 2) { break; }
			i += 1;
		}
		return i;
	}`)
	fn := cf.Functions["f"]
	dis := compiler.Disassemble(fn)
	require.Contains(t, dis, "lt")
	require.Contains(t, dis, "eql")
}

func TestCompileSwitchFallthrough(t *testing.T) {
	cf := compileSrc(t, `
	f(x) {
		y = 0;
		switch (x) {
		case 1:
		case 2:
			y = 1;
			break;
		default:
			y = 2;
		}
		return y;
	}`)
	fn := cf.Functions["f"]
	require.NotNil(t, fn)
	dis := compiler.Disassemble(fn)
	require.Contains(t, dis, "dup")
	require.Contains(t, dis, "cjmpt")
}

func TestCompileSpawnstructIntrinsic(t *testing.T) {
	cf := compileSrc(t, `f() { o = spawnstruct(); return o; }`)
	fn := cf.Functions["f"]
	dis := compiler.Disassemble(fn)
	require.Contains(t, dis, "makeobject")
	require.NotContains(t, dis, "call")
}

func TestCompileCallKinds(t *testing.T) {
	cf := compileSrc(t, `
	f() {
		g(1, 2);
		thread h();
		self notify("done");
		other::j();
	}`)
	fn := cf.Functions["f"]
	require.Len(t, fn.CallSites, 4)
	require.Equal(t, compiler.CallByName, fn.CallSites[0].Kind)
	require.False(t, fn.CallSites[0].Method)
	require.True(t, fn.CallSites[1].Threaded)
	require.True(t, fn.CallSites[2].Method)
	require.Equal(t, "notify", fn.CallSites[2].Name)
	require.Equal(t, compiler.CallByQualifiedName, fn.CallSites[3].Kind)
	require.Equal(t, "other", fn.CallSites[3].File)
}

func TestCompileBareBuiltinImplicitSelf(t *testing.T) {
	cf := compileSrc(t, `f() { waittill("event", a); }`)
	fn := cf.Functions["f"]
	require.Len(t, fn.CallSites, 1)
	require.True(t, fn.CallSites[0].Method)
	require.Equal(t, "waittill", fn.CallSites[0].Name)
	dis := compiler.Disassemble(fn)
	require.True(t, strings.Contains(dis, "self"))
}

func TestCompileRefLocalAndRefField(t *testing.T) {
	cf := compileSrc(t, `f(a) { waittill("x", &a); waittill("y", &level.v); level endon("stop"); }`)
	fn := cf.Functions["f"]
	dis := compiler.Disassemble(fn)
	require.Contains(t, dis, "reflocal")
	require.Contains(t, dis, "reffield")
}
