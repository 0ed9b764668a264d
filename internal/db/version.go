package db

import (
	"io/fs"
	"strconv"
	"strings"

	"github.com/graphstudio/studio/internal/db/migrations"
)

// SchemaVersion is the highest migration version embedded in the binary.
// Readiness compares it with the applied version.
func SchemaVersion() int64 {
	return highestVersion(migrations.FS)
}

// highestVersion reads the numeric prefix of every NNN_name.sql file in fsys.
func highestVersion(fsys fs.FS) int64 {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0
	}

	var highest int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}
		highest = max(highest, v)
	}
	return highest
}
