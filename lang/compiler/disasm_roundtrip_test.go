package compiler_test

import (
	"testing"

	"github.com/riicchhaarrd/libgsc/lang/compiler"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/require"
)

// TestDisassemblyIsDeterministic checks the round-trip law "compiling the
// same file twice yields bytecode streams of equal length with identical
// constant-pool references" (spec.md §8): two independent compiles of
// identical source must disassemble to byte-identical text. A mismatch is
// reported as a readable unified diff rather than a bare byte-length
// inequality (go-diff, as google-kati diffs generated Makefile graphs).
func TestDisassemblyIsDeterministic(t *testing.T) {
	src := `
	helper(a, b) {
		x = a + b * 2;
		if (x > 10) {
			return x;
		}
		i = 0;
		while (i < a) {
			i += 1;
		}
		return i;
	}
	main() {
		thread helper(1, 2);
		self waittill("go", &v);
		level.result = v;
	}
	`

	cf1 := compileSrc(t, src)
	cf2 := compileSrc(t, src)

	names := make([]string, 0, len(cf1.Functions))
	for name := range cf1.Functions {
		names = append(names, name)
	}
	require.ElementsMatch(t, names, functionNames(cf2))

	dmp := diffmatchpatch.New()
	for _, name := range names {
		dis1 := compiler.Disassemble(cf1.Functions[name])
		dis2 := compiler.Disassemble(cf2.Functions[name])
		require.Equal(t, len(dis1), len(dis2), "function %s: bytecode length diverged between compiles", name)

		diffs := dmp.DiffMain(dis1, dis2, false)
		if len(diffs) > 1 || (len(diffs) == 1 && diffs[0].Type != diffmatchpatch.DiffEqual) {
			t.Errorf("function %s: disassembly diverged between compiles:\n%s", name, dmp.DiffPrettyText(diffs))
		}
	}
}

func functionNames(cf *compiler.CompiledFile) []string {
	names := make([]string, 0, len(cf.Functions))
	for name := range cf.Functions {
		names = append(names, name)
	}
	return names
}
