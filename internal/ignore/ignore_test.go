package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIgnoreMatch(t *testing.T) {
	dir := t.TempDir()
	ig := filepath.Join(dir, FileName)
	content := "staging/\n*.debug.so\n# comment\n\nbroken.typelib\n/vendor/legacy\n"
	if err := os.WriteFile(ig, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(ig)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]bool{
		"staging/a.so":             true,
		"nested/staging/b.typelib": true,
		"libs/core.debug.so":       true,
		"broken.typelib":           true,
		"deep/broken.typelib":      true,
		"vendor/legacy/x.so":       true,
		"other/vendor/legacy/x.so": false,
		"libs/core.so":             false,
		"stagingarea/libs/core.so": false,
	}
	for p, want := range cases {
		if got := m.Match(p); got != want {
			t.Fatalf("Match(%q)=%v want %v", p, got, want)
		}
	}
}

func TestLoad_Missing(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), FileName))
	if err == nil {
		t.Fatal("expected error for missing ignore file")
	}
	if m.Match("anything.so") {
		t.Fatal("empty matcher must not match")
	}
}

func TestParse_WindowsSeparators(t *testing.T) {
	m := Parse(strings.NewReader("build/\n"))
	if !m.Match(`build\out\a.so`) {
		t.Fatal("expected backslash path to be normalized")
	}
}
