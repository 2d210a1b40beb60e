package migrations

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDialects(t *testing.T) {
	for _, dialect := range []string{"sqlite", "postgres", "mysql"} {
		files, err := fs.Glob(Source(""), dialect+"/*.sql")
		if err != nil {
			t.Fatal(err)
		}
		if len(files) == 0 {
			t.Errorf("no %s migrations embedded", dialect)
		}
	}
}

func TestSourceFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sqlite"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sqlite", "001_init.sql"), []byte("SELECT 1;"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := fs.Glob(Source(dir), "sqlite/*.sql")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != "sqlite/001_init.sql" {
		t.Errorf("files = %v", files)
	}
}
