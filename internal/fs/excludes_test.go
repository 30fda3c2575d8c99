package fs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func contains(patterns []string, want string) bool {
	for _, p := range patterns {
		if p == want {
			return true
		}
	}
	return false
}

func TestBuildExcludeListDefaults(t *testing.T) {
	list := BuildExcludeList(ExcludeOptions{})

	for _, want := range []string{"node_modules/", ".git/", ".env"} {
		if !contains(list.Patterns, want) {
			t.Errorf("expected %s in default excludes", want)
		}
	}
}

func TestBuildExcludeListIncludeEnv(t *testing.T) {
	list := BuildExcludeList(ExcludeOptions{IncludeEnv: true})

	for _, p := range list.Patterns {
		if p == ".env" || p == ".env.*" {
			t.Errorf("expected .env patterns to be dropped when IncludeEnv is set, found: %s", p)
		}
	}
}

func TestBuildExcludeListNoBuiltinKeepsAdditional(t *testing.T) {
	list := BuildExcludeList(ExcludeOptions{
		NoBuiltin:  true,
		Additional: []string{"fixtures/", " ", "fixtures/", "*.lock"},
	})

	want := []string{"fixtures/", "*.lock"}
	if !reflect.DeepEqual(list.Patterns, want) {
		t.Errorf("Patterns = %v, want %v", list.Patterns, want)
	}
}

func TestBuildExcludeListRemove(t *testing.T) {
	list := BuildExcludeList(ExcludeOptions{Remove: []string{"vendor/"}})
	if contains(list.Patterns, "vendor/") {
		t.Error("expected vendor/ to be removed")
	}
}

func TestExcludeListMatch(t *testing.T) {
	list := &ExcludeList{Patterns: []string{"node_modules/", "*.log", "docs/generated/", ".env"}}

	tests := []struct {
		name  string
		path  string
		isDir bool
		want  bool
	}{
		{"dir pattern matches dir", "node_modules", true, true},
		{"dir pattern matches nested dir", "web/node_modules", true, true},
		{"dir pattern ignores file", "node_modules", false, false},
		{"glob matches base name", "logs/app.log", false, true},
		{"anchored pattern matches", "docs/generated", true, true},
		{"anchored pattern not at depth", "pkg/docs/generated", true, false},
		{"literal file", ".env", false, true},
		{"unrelated", "main.go", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := list.Match(tt.path, tt.isDir); got != tt.want {
				t.Errorf("Match(%q, %v) = %v, want %v", tt.path, tt.isDir, got, tt.want)
			}
		})
	}
}

func TestNilExcludeListMatchesNothing(t *testing.T) {
	var list *ExcludeList
	if list.Match("node_modules", true) {
		t.Error("nil list should not exclude anything")
	}
}

func TestParseExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excludes")
	content := "# comment\n\n*.lock\n  fixtures/  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ParseExcludeFile(path)
	if err != nil {
		t.Fatalf("ParseExcludeFile error: %v", err)
	}
	want := []string{"*.lock", "fixtures/"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseExcludeFile() = %v, want %v", got, want)
	}
}
