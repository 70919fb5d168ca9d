package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCollectOrdersByName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"0002_catalog.up.sql",
		"0001_accounts.up.sql",
		"0001_accounts.down.sql",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("select 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := collect(dir, ".up.sql")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
	if files[0].name != "0001_accounts.up.sql" || files[1].name != "0002_catalog.up.sql" {
		t.Errorf("order = %s, %s", files[0].name, files[1].name)
	}
}

func TestCollectMissingDir(t *testing.T) {
	files, err := collect(filepath.Join(t.TempDir(), "nope"), ".sql")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v", files)
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements(`
		create table a (id text primary key);
		insert into a values ('semi;inside');
		create index idx on a(id)
	`)
	if len(stmts) != 3 {
		t.Fatalf("got %d statements: %q", len(stmts), stmts)
	}
	if !strings.Contains(stmts[1], "'semi;inside'") {
		t.Errorf("string literal split: %q", stmts[1])
	}
	if !strings.Contains(stmts[2], "create index") {
		t.Errorf("trailing statement lost: %q", stmts[2])
	}
}
