// Package linker implements the fixpoint include-alias propagation step
// between per-file compile results (spec.md §4.4). It owns none of the
// compiling itself — it only ever mutates the Functions map of an already
// Done CompiledFile by copying in function pointers from its includes.
package linker

import "github.com/riicchhaarrd/libgsc/lang/compiler"

// Link walks every Done file's includes and, for each included file that is
// also Done, adds an alias entry to the including file's function table for
// every included function not already defined there by that name. An
// already-defined name wins; there is no override and no diagnostic (spec.md
// §4.4).
//
// A single pass can miss a transitive include (A includes B includes C):
// if A is visited before B has absorbed C's functions, A only sees what B
// had at that point. So Link repeats passes until one makes no further
// change, exactly the "runs to a fixpoint: each include pass may make new
// transitions visible" behavior spec.md §4.4 calls for (grounded on
// original_source/library.c's gsc_link, generalized from its single pass to
// a repeated one).
func Link(files map[string]*compiler.CompiledFile) {
	for {
		if !linkPass(files) {
			return
		}
	}
}

// linkPass runs one alias-propagation sweep over files and reports whether
// it added at least one new alias.
func linkPass(files map[string]*compiler.CompiledFile) bool {
	changed := false
	for _, cf := range files {
		if cf.State != compiler.Done {
			continue
		}
		for _, inc := range cf.Includes {
			included, ok := files[inc]
			if !ok || included.State != compiler.Done {
				continue
			}
			for name, fn := range included.Functions {
				if _, exists := cf.Functions[name]; exists {
					continue
				}
				cf.Functions[name] = fn
				changed = true
			}
		}
	}
	return changed
}

// PendingDependencies returns every path named by cf's Includes or FileRefs
// that has no entry yet in files, in first-seen order with duplicates
// collapsed. The embedder's compile-to-fixpoint driver loop (spec.md §4.4,
// §6) uses this to discover which files it still needs to feed to the
// compiler, grounded on the C implementation's find_or_create_compiled_file
// calls made right after a successful compile for every include and file
// reference.
func PendingDependencies(files map[string]*compiler.CompiledFile, cf *compiler.CompiledFile) []string {
	var missing []string
	seen := make(map[string]bool)
	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		if _, ok := files[path]; !ok {
			missing = append(missing, path)
		}
	}
	for _, inc := range cf.Includes {
		add(inc)
	}
	for _, ref := range cf.FileRefs {
		add(ref)
	}
	return missing
}
