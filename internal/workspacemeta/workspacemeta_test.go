package workspacemeta

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseRecognizedKeys(t *testing.T) {
	m := Parse([]byte("repository: my-repo\ncwd: /home/user/project\nsummary: fixing the thing\n"))
	if m.Repository != "my-repo" || m.WorkingDirectory != "/home/user/project" || m.Summary != "fixing the thing" {
		t.Fatalf("got %+v", m)
	}
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	m := Parse([]byte("repository: r\nunknown_key: value\n"))
	if m.Repository != "r" {
		t.Fatalf("got %+v", m)
	}
}

func TestParseOnlyFirstColonSplits(t *testing.T) {
	m := Parse([]byte("summary: fixed bug at 10:30 on Windows C:\\path\n"))
	if m.Summary != "fixed bug at 10:30 on Windows C:\\path" {
		t.Fatalf("got %q", m.Summary)
	}
}

func TestParseSkipsLinesWithoutColon(t *testing.T) {
	m := Parse([]byte("not a key value line\nrepository: r\n"))
	if m.Repository != "r" {
		t.Fatalf("got %+v", m)
	}
}

func TestParseSkipsInvalidKeyCharacters(t *testing.T) {
	m := Parse([]byte("bad key!: value\nrepository: r\n"))
	if m.Repository != "r" {
		t.Fatalf("got %+v", m)
	}
}

func TestParseEmptyIsZero(t *testing.T) {
	m := Parse(nil)
	if !m.IsZero() {
		t.Fatalf("got %+v, want zero", m)
	}
}

func TestParseFileMissingReturnsNilNil(t *testing.T) {
	m, err := ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatalf("got %+v, want nil", m)
	}
}

func TestParseFileReadsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspace.yaml")
	if err := os.WriteFile(path, []byte("repository: demo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Repository != "demo" {
		t.Fatalf("got %+v", m)
	}
}

func TestProjectNamePrefersRepository(t *testing.T) {
	m := &Meta{Repository: "repo-a", WorkingDirectory: "/x/y/z"}
	if got := ProjectName(m); got != "repo-a" {
		t.Fatalf("got %q", got)
	}
}

func TestProjectNameFallsBackToWorkingDirectory(t *testing.T) {
	m := &Meta{WorkingDirectory: "/home/user/my-project"}
	if got := ProjectName(m); got != "my-project" {
		t.Fatalf("got %q", got)
	}
}

func TestProjectNameNilIsUnknown(t *testing.T) {
	if got := ProjectName(nil); got != "Unknown" {
		t.Fatalf("got %q", got)
	}
}

func TestProjectNameEmptyMetaIsUnknown(t *testing.T) {
	m := &Meta{}
	if got := ProjectName(m); got != "Unknown" {
		t.Fatalf("got %q", got)
	}
}
