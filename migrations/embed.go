// Package migrations embeds the SQL schema for every supported dialect.
package migrations

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS

// Source returns the migrations under dir, or the embedded ones when dir is empty
func Source(dir string) fs.FS {
	if dir == "" {
		return FS
	}
	return os.DirFS(dir)
}
