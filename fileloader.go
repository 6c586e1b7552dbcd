package gsc

import (
	"os"
	"path/filepath"
)

// DefaultFileLoader resolves a canonical gsc name to the file on disk it
// names by appending ".gsc" if the name has no extension of its own
// (grounded on original_source/main.c: `snprintf(path, ..., "%s%s.gsc",
// program->base_path, filename)`), then reads it. A name typed with its
// extension already (the common case when a host names an exact file)
// round-trips unchanged.
func DefaultFileLoader(name string) ([]byte, error) {
	return os.ReadFile(scriptPath(name))
}

func scriptPath(name string) string {
	if filepath.Ext(name) != "" {
		return name
	}
	return name + ".gsc"
}
