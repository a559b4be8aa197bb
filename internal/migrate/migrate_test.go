package migrate

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(dir, name string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o644)
}

func TestSplitStatementsBasic(t *testing.T) {
	got := splitStatements("create table a(id int);\ncreate table b(id int);")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %#v", len(got), got)
	}
}

func TestSplitStatementsRespectsStrings(t *testing.T) {
	got := splitStatements(`insert into t(v) values ('a;b'); select 1;`)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %#v", len(got), got)
	}
	if got[0] != `insert into t(v) values ('a;b');` {
		t.Fatalf("string literal split: %q", got[0])
	}
}

func TestSplitStatementsTrailingWithoutSemicolon(t *testing.T) {
	got := splitStatements("select 1; select 2")
	want := []string{"select 1;", " select 2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestSplitStatementsWhitespaceOnly(t *testing.T) {
	if got := splitStatements("  \n\t "); got != nil {
		t.Fatalf("want nil, got %#v", got)
	}
}

func TestSQLFilesOrderedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) {
		t.Helper()
		if err := writeFile(dir, name); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("0002_notifications.up.sql")
	write("0001_access.up.sql")
	write("0001_access.down.sql")
	write("README.md")

	files, err := sqlFiles(dir, ".up.sql")
	if err != nil {
		t.Fatalf("sqlFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len = %d, want 2: %#v", len(files), files)
	}
	if files[0].name != "0001_access.up.sql" || files[1].name != "0002_notifications.up.sql" {
		t.Fatalf("wrong order: %#v", files)
	}
}

func TestSQLFilesMissingDir(t *testing.T) {
	files, err := sqlFiles("/does/not/exist", ".sql")
	if err != nil {
		t.Fatalf("sqlFiles: %v", err)
	}
	if files != nil {
		t.Fatalf("want nil, got %#v", files)
	}
}

func TestSQLFilesEmptyDirName(t *testing.T) {
	files, err := sqlFiles("", ".sql")
	if err != nil || files != nil {
		t.Fatalf("want nil, nil; got %#v, %v", files, err)
	}
}
