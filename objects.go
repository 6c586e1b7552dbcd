package gsc

import (
	"sort"

	"github.com/riicchhaarrd/libgsc/lang/machine"
)

// NewObject allocates a fresh GSC object, optionally tagged (spec.md §6
// "Objects: allocate"). An empty tag leaves the object untagged, same as
// machine.NewObject.
func (ctx *Context) NewObject(tag string) *machine.Object {
	o := ctx.Machine.NewObject()
	o.Tag = tag
	return o
}

// GetField reads a named field by walking o's proxy chain (spec.md §4.7;
// §6 "Objects: get/set field by name"). A miss returns a *machine.
// NoSuchAttrError augmented with a did-you-mean suggestion (SPEC_FULL.md §7)
// rather than (Value{}, false): the embedding API documents field reads as
// "get/set field by name", and a host debugging a typo'd field name is the
// whole reason that error carries a Name at all.
func (ctx *Context) GetField(o *machine.Object, name string) (machine.Value, error) {
	id := ctx.Strings.IDOf(name)
	if id >= 0 {
		if v, ok := o.Attr(machine.FieldKey(id)); ok {
			return v, nil
		}
	}
	return machine.Value{}, ctx.noSuchAttr(o, name)
}

// SetField writes a named field directly on o, interning name if this is its
// first use (spec.md §6 "Objects: get/set field by name"; §4.3 "Assignment
// to a non-existent field creates it").
func (ctx *Context) SetField(o *machine.Object, name string, v machine.Value) error {
	id, err := ctx.Strings.Intern(name)
	if err != nil {
		return err
	}
	o.Set(machine.FieldKey(id), v)
	return nil
}

// GetProxy and SetProxy expose an object's method-lookup fallback (spec.md
// §6 "Objects: get/set proxy"; §4.7).
func (ctx *Context) GetProxy(o *machine.Object) *machine.Object      { return o.Proxy }
func (ctx *Context) SetProxy(o *machine.Object, proxy *machine.Object) { o.Proxy = proxy }

// Tag returns o's kind tag (spec.md §6 "Objects: get tag").
func (ctx *Context) Tag(o *machine.Object) string { return o.Tag }

// SetDebugInfo records provenance for diagnostics (spec.md §6 "Objects: set
// debug info").
func (ctx *Context) SetDebugInfo(o *machine.Object, file, function string, line int) {
	o.Debug = machine.DebugInfo{File: file, Function: function, Line: line}
}

// GetHandle and SetHandle round-trip an opaque host value through o (spec.md
// §6 "Objects: get/set opaque host handle"; SPEC_FULL.md §7 "a host-owned
// opaque handle ... stored via github.com/mattn/go-pointer's opaque-pointer
// registry ... so the handle survives a pointer-sized round trip without the
// VM ever dereferencing host memory itself"). o.Handle stores the
// unsafe.Pointer go-pointer.Save hands back, wrapped in handle.go so this
// package is the only place that ever calls Save/Restore/Unref.
func (ctx *Context) SetHandle(o *machine.Object, v interface{}) {
	releaseHandle(o)
	o.Handle = saveHandle(v)
}

func (ctx *Context) GetHandle(o *machine.Object) (interface{}, bool) {
	return restoreHandle(o)
}

// fieldNames returns every field name currently set directly on o (not
// walking its proxy chain), sorted, for the did-you-mean suggestion below.
// o.Fields also holds numeric a[i] index entries in a disjoint key lane
// (machine.FieldKey / indexFieldID); FieldKeyToStringID reports ok=false for
// those and they are skipped here, since they have no field name to suggest.
func (ctx *Context) fieldNames(o *machine.Object) []string {
	names := make([]string, 0, len(o.Fields))
	for key := range o.Fields {
		id, ok := machine.FieldKeyToStringID(key)
		if !ok {
			continue
		}
		if s, ok := ctx.Strings.Lookup(id); ok {
			names = append(names, s)
		}
	}
	sort.Strings(names)
	return names
}

func (ctx *Context) noSuchAttr(o *machine.Object, name string) error {
	err := &machine.NoSuchAttrError{Tag: o.Tag, Name: name}
	if suggestion, ok := suggestField(name, ctx.fieldNames(o)); ok {
		return &suggestedAttrError{NoSuchAttrError: err, Suggestion: suggestion}
	}
	return err
}

// suggestedAttrError augments machine.NoSuchAttrError with a candidate field
// name (spec.md §7 "the runtime may augment the error message to warn of
// possible misspelling"), while still unwrapping to the plain error so a
// caller matching on *machine.NoSuchAttrError with errors.As still works.
type suggestedAttrError struct {
	*machine.NoSuchAttrError
	Suggestion string
}

func (e *suggestedAttrError) Error() string {
	return e.NoSuchAttrError.Error() + " (did you mean \"" + e.Suggestion + "\"?)"
}

func (e *suggestedAttrError) Unwrap() error { return e.NoSuchAttrError }
