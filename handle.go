package gsc

import (
	"unsafe"

	pointer "github.com/mattn/go-pointer"
	"github.com/riicchhaarrd/libgsc/lang/machine"
)

// saveHandle registers v in go-pointer's global registry and returns the
// resulting unsafe.Pointer for storage on an Object's Handle field (spec.md
// §6 "opaque host handle"; SPEC_FULL.md §7, grounded on wudi-hey's use of
// the same package to round-trip Go values through a C-style void*
// boundary). Object.Handle stores the unsafe.Pointer itself rather than v
// directly so an object carrying a handle is always exactly one
// pointer-sized value regardless of what v is, matching the "opaque" framing
// of the embedding API.
func saveHandle(v interface{}) unsafe.Pointer {
	return pointer.Save(v)
}

func restoreHandle(o *machine.Object) (interface{}, bool) {
	p, ok := o.Handle.(unsafe.Pointer)
	if !ok || p == nil {
		return nil, false
	}
	return pointer.Restore(p), true
}

// releaseHandle unregisters o's previous handle, if any, before SetHandle
// installs a new one: go-pointer's registry leaks its entry otherwise, since
// nothing else ever calls Unref for it.
func releaseHandle(o *machine.Object) {
	if p, ok := o.Handle.(unsafe.Pointer); ok && p != nil {
		pointer.Unref(p)
	}
}
