package machine

import "fmt"

// DebugInfo is the optional provenance an Object can carry for diagnostics
// (spec.md §3 "Object": "debug info (file, function, line)").
type DebugInfo struct {
	File     string
	Function string
	Line     int
}

// Object is a GSC entity: a field map plus an optional proxy fallback, an
// optional tag naming its kind, an optional opaque host handle, and debug
// info (spec.md §3 "Object"). Keys are FieldKey(id) of a field name's
// interned string id (arena.Strings, even keys) or indexFieldID's odd keys
// for numeric a[i] indices, so a field lookup never needs a string compare.
type Object struct {
	Fields map[int32]Value
	Proxy  *Object
	Tag    string
	Handle interface{} // opaque host handle (spec.md §6 "opaque host handle"); see gsc package for the go-pointer wrapping at the embedding boundary
	Debug  DebugInfo
}

// NewObject allocates an object with an empty field map on the Go heap;
// objects are not arena-backed. Machine.NewObject wraps it, and the gsc
// package's globals object calls it directly.
func NewObject() *Object {
	return &Object{Fields: make(map[int32]Value)}
}

// NoSuchAttrError reports a missing field/attribute lookup by interned name,
// carrying enough for a caller closer to the embedding boundary (the gsc
// package) to offer a did-you-mean suggestion via go-edlib against the
// receiver's known field names (SPEC_FULL.md §7).
type NoSuchAttrError struct {
	Tag  string
	Name string
}

func (e *NoSuchAttrError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s has no field %q", e.Tag, e.Name)
	}
	return fmt.Sprintf("object has no field %q", e.Name)
}

// Get looks up id directly on o, without walking the proxy chain. Ordinary
// field reads (ATTR) use Attr instead; Get is exposed for the embedding API's
// get-field-by-name operation (spec.md §6 "Objects"), which is documented as
// a direct field read.
func (o *Object) Get(id int32) (Value, bool) {
	v, ok := o.Fields[id]
	return v, ok
}

func (o *Object) Set(id int32, v Value) {
	o.Fields[id] = v
}

// Attr resolves a field through the proxy chain (spec.md §4.7 "field lookup
// on object o: o.fields[k]; if absent and o.proxy is set, recurse into
// o.proxy"). Walked iteratively rather than by recursive calls since proxy
// graphs are small and fixed in practice (the default proxy is shared, never
// self-referential); this does not protect against a cyclic Proxy chain,
// which would loop here forever rather than overflow the stack. Nothing in
// this package ever constructs one; a host wiring SetProxy in a cycle is a
// host bug this package does not currently guard against.
func (o *Object) Attr(id int32) (Value, bool) {
	for cur := o; cur != nil; cur = cur.Proxy {
		if v, ok := cur.Fields[id]; ok {
			return v, true
		}
	}
	return Value{}, false
}
