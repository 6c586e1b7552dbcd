package gsc

import "github.com/dustin/go-humanize"

// humanizeBytes renders a byte count the way ArenaStats reports arena usage
// (SPEC_FULL.md §8 "Verbose arena-usage diagnostics report sizes with
// github.com/dustin/go-humanize").
func humanizeBytes(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
