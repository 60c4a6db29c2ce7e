package buildinfo

import (
	"strings"
	"testing"
)

func TestScope(t *testing.T) {
	defer func(v, c string) { Version, Commit = v, c }(Version, Commit)

	tests := []struct {
		version, commit, want string
	}{
		{"v1.2.0", "abc", "v1.2.0"},
		{"dev", "none", "dev-none"},
		{"dev", "0123456789abcdef0123", "dev-0123456789ab"},
	}
	for _, tt := range tests {
		Version, Commit = tt.version, tt.commit
		if got := Scope(); got != tt.want {
			t.Errorf("Scope() with %q/%q = %q, want %q", tt.version, tt.commit, got, tt.want)
		}
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "{{.Name}} version "+Version) {
		t.Errorf("Template() = %q", Template())
	}
}
