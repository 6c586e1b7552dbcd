// Package resolver assigns a frame-local slot index to every distinct
// identifier name a function uses, so the compiler can emit LOCAL/SETLOCAL/
// REFLOCAL by index rather than by name. GSC has no nested function
// definitions or closures, so this is a drastically trimmed version of
// the teacher's resolver (no Cell/Free-variable capture, no per-block
// scoping — a GSC function is one flat scope, spec.md §3's Frame has a
// single flat locals array).
package resolver

import (
	"fmt"

	"github.com/riicchhaarrd/libgsc/lang/ast"
)

// universals are the identifier names that never get a local slot: the
// three global roots and the implicit method-call receiver (spec.md §3
// "Global roots", §4.5 Frame's `self` field).
var universals = map[string]bool{
	"level": true,
	"anim":  true,
	"game":  true,
	"self":  true,
}

// Function is the resolved binding table for one FuncDecl.
type Function struct {
	Name       string
	ParamCount int
	// LocalCount is the total number of local slots to allocate in the
	// frame, parameters occupying the first ParamCount of them.
	LocalCount int
	Bindings   map[string]*Binding
}

// Lookup returns the binding for name, or (nil, false) if name is never
// referenced in this function (the compiler treats that as a compile
// error only for file-qualified/global-proxy method names; plain
// identifiers always get a binding since Resolve pre-scans the whole
// body).
func (f *Function) Lookup(name string) (*Binding, bool) {
	b, ok := f.Bindings[name]
	return b, ok
}

// Resolve walks fn's body once, assigning a Local slot to every distinct
// identifier name encountered (besides the universals), parameters first
// in declaration order.
func Resolve(fn *ast.FuncDecl) (*Function, error) {
	f := &Function{Name: fn.Name, ParamCount: len(fn.Params), Bindings: make(map[string]*Binding)}

	for i, p := range fn.Params {
		if universals[p] {
			return nil, fmt.Errorf("%s: parameter %q shadows a reserved name", fn.Name, p)
		}
		f.Bindings[p] = &Binding{Scope: Local, Index: i}
	}
	f.LocalCount = len(fn.Params)

	r := &resolveVisitor{f: f}
	ast.Walk(r, fn.Body)

	return f, nil
}

type resolveVisitor struct {
	f *Function
}

func (r *resolveVisitor) Visit(n ast.Node, dir ast.VisitDirection) ast.Visitor {
	if dir == ast.VisitExit {
		return nil
	}
	switch n := n.(type) {
	case *ast.CallExpr:
		// the callee is a function-symbol name, not a variable reference;
		// only its arguments are ordinary expressions.
		for _, a := range n.Args {
			ast.Walk(r, a)
		}
		return nil
	case *ast.IdentExpr:
		r.bind(n.Name)
	}
	return r
}

func (r *resolveVisitor) bind(name string) {
	if _, ok := r.f.Bindings[name]; ok {
		return
	}
	if universals[name] {
		r.f.Bindings[name] = &Binding{Scope: Universal}
		return
	}
	r.f.Bindings[name] = &Binding{Scope: Local, Index: r.f.LocalCount}
	r.f.LocalCount++
}
