package locate

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestGlobalModulesDir(t *testing.T) {
	tests := []struct {
		goos   string
		prefix string
		want   string
	}{
		{"windows", `C:\tools`, `C:\tools\node_modules`},
		{"windows", `C:\`, `C:\node_modules`},
		{"linux", "/usr/local", "/usr/local/lib/node_modules"},
		{"darwin", "/opt/homebrew/", "/opt/homebrew/lib/node_modules"},
		{"freebsd", "/usr/local", "/usr/local/lib/node_modules"},
	}
	for _, tt := range tests {
		t.Run(tt.goos+" "+tt.prefix, func(t *testing.T) {
			want := tt.want
			if tt.goos == runtime.GOOS {
				want = filepath.FromSlash(want)
			}
			if got := globalModulesDir(tt.goos, tt.prefix); got != want {
				t.Errorf("globalModulesDir(%q, %q) = %q, want %q", tt.goos, tt.prefix, got, want)
			}
		})
	}
}

func TestJoinFor_Windows(t *testing.T) {
	got := joinFor("windows", `D:\work\`, "node_modules", "@scope/pkg")
	if got != `D:\work\node_modules\@scope\pkg` {
		t.Errorf("joinFor() = %q", got)
	}
}
