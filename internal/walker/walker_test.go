package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// writeTree creates files under a temp dir and returns its path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func relPaths(files []FileInfo) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWalk_BasicTraversal(t *testing.T) {
	root := writeTree(t, map[string]string{
		"notes.txt":          "meeting notes",
		"docs/guide.md":      "# Guide",
		"docs/report.pdf":    "%PDF-1.4 fake",
		"docs/deep/spec.txt": "deep file",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"docs/deep/spec.txt", "docs/guide.md", "docs/report.pdf", "notes.txt"}
	if got := relPaths(files); !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, f := range files {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("Path %q is not absolute", f.Path)
		}
		if f.Size <= 0 {
			t.Errorf("%s: Size = %d", f.RelPath, f.Size)
		}
		if len(f.ContentHash) != 64 {
			t.Errorf("%s: ContentHash length = %d, want 64", f.RelPath, len(f.ContentHash))
		}
	}
}

func TestWalk_Kinds(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.pdf":  "pdf bytes",
		"b.docx": "docx bytes",
		"c.txt":  "text",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	kinds := make(map[string]Kind)
	for _, f := range files {
		kinds[f.RelPath] = f.Kind
	}
	if kinds["a.pdf"] != KindPDF || kinds["b.docx"] != KindWord || kinds["c.txt"] != KindText {
		t.Errorf("unexpected kinds: %v", kinds)
	}
}

func TestWalk_IncludePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.pdf":     "one",
		"b/C.PDF":   "two",
		"c.txt":     "three",
		"d.png":     "four",
		"e/f/g.doc": "five",
	})

	files, err := Walk(WalkerConfig{RootDir: root, Include: []string{"*.pdf", "*.doc"}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"a.pdf", "b/C.PDF", "e/f/g.doc"}
	if got := relPaths(files); !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_ExcludePatterns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"keep.txt":        "keep",
		"drafts/old.txt":  "old",
		"drafts/more.txt": "more",
	})

	files, err := Walk(WalkerConfig{RootDir: root, Exclude: []string{"drafts/**"}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if got := relPaths(files); !equalStrings(got, []string{"keep.txt"}) {
		t.Errorf("got %v", got)
	}
}

func TestWalk_DefaultExcludes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"readme.txt":             "top",
		".git/config.txt":        "git",
		"node_modules/pkg/x.txt": "npm",
		".docchat/uploads/y.txt": "app data",
		"~$locked.docx":          "lock file",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if got := relPaths(files); !equalStrings(got, []string{"readme.txt"}) {
		t.Errorf("got %v", got)
	}
}

func TestWalk_Gitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":         "# comment\n*.log\nprivate/\n",
		"a.txt":              "a",
		"debug.log":          "log",
		"private/b.txt":      "secret",
		"public/c.txt":       "c",
		"public/private.txt": "file named private",
	})

	files, err := Walk(WalkerConfig{RootDir: root, Include: []string{"*.txt", "*.log"}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"a.txt", "public/c.txt", "public/private.txt"}
	if got := relPaths(files); !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_SkipsBinaryText(t *testing.T) {
	root := writeTree(t, map[string]string{
		"good.txt": "plain text",
		"bad.txt":  "abc\x00def",
		"scan.pdf": "%PDF\x00binary",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	want := []string{"good.txt", "scan.pdf"}
	if got := relPaths(files); !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_MaxFileSizeAndEmpty(t *testing.T) {
	root := writeTree(t, map[string]string{
		"small.txt": "tiny",
		"large.txt": "this file is larger than the limit",
		"empty.txt": "",
	})

	files, err := Walk(WalkerConfig{RootDir: root, MaxFileSize: 10})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if got := relPaths(files); !equalStrings(got, []string{"small.txt"}) {
		t.Errorf("got %v", got)
	}
}

func TestWalk_DeduplicatesContent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.txt":      "same content",
		"copy/a.txt": "same content",
		"b.txt":      "different",
	})

	files, err := Walk(WalkerConfig{RootDir: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), relPaths(files))
	}
	if files[0].ContentHash == files[1].ContentHash {
		t.Error("duplicate hashes returned")
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	files, err := Walk(WalkerConfig{RootDir: filepath.Join(t.TempDir(), "nope")})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"report.pdf", KindPDF},
		{"REPORT.PDF", KindPDF},
		{"letter.docx", KindWord},
		{"legacy.doc", KindWord},
		{"notes.txt", KindText},
		{"README.md", KindText},
		{"photo.jpg", KindOther},
		{"Makefile", KindOther},
	}
	for _, tt := range tests {
		if got := DetectKind(tt.name); got != tt.want {
			t.Errorf("DetectKind(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestGitignoreRules(t *testing.T) {
	rules := parseGitignore("# comment\n*.tmp\nbuild/\n/docs/draft.md\n*.log\n!keep.log\n")
	tests := []struct {
		path string
		want bool
	}{
		{"x.tmp", true},
		{"a/b/x.tmp", true},
		{"build/out.txt", true},
		{"src/build/out.txt", true},
		{"build", false},
		{"docs/draft.md", true},
		{"other/docs/draft.md", false},
		{"docs/final.md", false},
		{"debug.log", true},
		{"keep.log", false},
	}
	for _, tt := range tests {
		if got := rules.ignored(tt.path); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestInspect(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.txt": "hello",
		"b.bin": "he\x00llo",
	})

	hash, binary, err := inspect(filepath.Join(root, "a.txt"), true)
	if err != nil || binary {
		t.Fatalf("inspect(a.txt) = %q, %v, %v", hash, binary, err)
	}
	// sha256("hello")
	if hash != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("hash = %s", hash)
	}

	if _, binary, _ := inspect(filepath.Join(root, "b.bin"), true); !binary {
		t.Error("expected NUL byte to mark the file binary")
	}
	if _, binary, _ := inspect(filepath.Join(root, "b.bin"), false); binary {
		t.Error("sniffing disabled should never report binary")
	}
}

func TestFilterMatch(t *testing.T) {
	f := Filter{Include: []string{"*.pdf", "*.txt"}, Exclude: []string{"drafts/**"}}
	tests := []struct {
		path string
		want bool
	}{
		{"a.pdf", true},
		{"A.PDF", true},
		{"docs/notes.txt", true},
		{"archive.zip", false},
		{"pdf", false},
		{"drafts/old.txt", false},
	}
	for _, tt := range tests {
		if got := f.Match(tt.path); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if !(Filter{}).Match("anything.bin") {
		t.Error("expected an empty filter to accept everything")
	}
}
