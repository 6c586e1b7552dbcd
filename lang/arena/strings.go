package arena

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dolthub/swiss"
)

// Strings is the bidirectional interned-string table of spec.md §4.1: each
// unique byte sequence is stored once, `Intern` is total, `IDOf` is
// lookup-only, ids are dense starting at 0, and `-1` is the reserved
// "not present" sentinel. The table is append-only for the context's
// lifetime: once an id is issued it never changes or is reused.
//
// Deduplication hashes candidate bytes with xxhash (grounded on
// standardbeagle-lci's use of xxhash as its content-hashing primitive) and
// keeps a swiss-table map (github.com/dolthub/swiss) from hash to the list of ids sharing
// that hash, so a collision costs one extra byte comparison rather than a
// full string compare against every prior entry.
type Strings struct {
	arena  *Arena
	byHash *swiss.Map[uint64, []int32]
	strs   []string // dense id -> bytes (arena-backed)
}

// NewStrings creates a string table whose interned bytes are allocated out
// of a (gsc.New passes a dedicated "strings" arena, separate from the main
// and scratch arenas, per spec.md §4.1's "for interned strings, a dedicated
// arena" discipline).
func NewStrings(a *Arena) *Strings {
	return &Strings{
		arena:  a,
		byHash: swiss.NewMap[uint64, []int32](64),
	}
}

// Intern returns the id for s, allocating a new one if s has not been seen
// before. It is total: it never fails to produce an id unless the backing
// arena is exhausted, in which case it returns the arena's OutOfMemory
// error.
func (s *Strings) Intern(str string) (int32, error) {
	h := xxhash.Sum64String(str)
	if ids, ok := s.byHash.Get(h); ok {
		for _, id := range ids {
			if s.strs[id] == str {
				return id, nil
			}
		}
	}

	owned, err := AllocString(s.arena, str)
	if err != nil {
		return -1, err
	}
	id := int32(len(s.strs))
	s.strs = append(s.strs, owned)

	ids, _ := s.byHash.Get(h)
	s.byHash.Put(h, append(ids, id))
	return id, nil
}

// MustIntern is like Intern but panics on OutOfMemory. It is meant for call
// sites that intern a small, fixed set of well-known names (the three
// global roots, the four built-in proxy method names) where an arena
// exhaustion this early is already a fatal misconfiguration.
func (s *Strings) MustIntern(str string) int32 {
	id, err := s.Intern(str)
	if err != nil {
		panic(err)
	}
	return id
}

// IDOf looks up str without interning it, returning -1 if it has never been
// interned.
func (s *Strings) IDOf(str string) int32 {
	h := xxhash.Sum64String(str)
	ids, ok := s.byHash.Get(h)
	if !ok {
		return -1
	}
	for _, id := range ids {
		if s.strs[id] == str {
			return id
		}
	}
	return -1
}

// Lookup returns the bytes for id, or "" and false if id is out of range.
func (s *Strings) Lookup(id int32) (string, bool) {
	if id < 0 || int(id) >= len(s.strs) {
		return "", false
	}
	return s.strs[id], true
}

// Len returns the number of distinct strings interned so far.
func (s *Strings) Len() int { return len(s.strs) }
