package locate

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeScript creates executable shell script standing in for package manager.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == goosWindows {
		t.Skip("shell scripts are not available on windows")
	}
	path := filepath.Join(t.TempDir(), "npm")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	return path
}

func TestCommandPrefix(t *testing.T) {
	script := writeScript(t, `printf '/usr/local\n'`)

	out, err := CommandPrefix(script, "config", "get", "prefix")(context.Background())
	if err != nil {
		t.Fatalf("CommandPrefix() error = %v", err)
	}
	if out != "/usr/local\n" {
		t.Errorf("CommandPrefix() = %q, want raw output", out)
	}
	if got := trimPrefix(out); got != "/usr/local" {
		t.Errorf("trimPrefix() = %q, want /usr/local", got)
	}
}

func TestCommandPrefix_Failure(t *testing.T) {
	script := writeScript(t, `echo "npm ERR! broken config" >&2; exit 3`)

	_, err := CommandPrefix(script)(context.Background())
	if err == nil {
		t.Fatal("Expected error for failing command")
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		t.Errorf("error %v does not wrap exit error", err)
	}
	if !strings.Contains(err.Error(), "broken config") {
		t.Errorf("error %q does not include stderr", err)
	}
}

func TestCommandPrefix_Missing(t *testing.T) {
	_, err := CommandPrefix(filepath.Join(t.TempDir(), "no-such-npm"))(context.Background())
	if err == nil {
		t.Fatal("Expected error for missing executable")
	}

	l := New(WithPrefix(CommandPrefix(filepath.Join(t.TempDir(), "no-such-npm"))))
	_, _, err = l.Resolve(context.Background(), Request{Module: "autoprefixer"})
	var pe *PrefixError
	if !errors.As(err, &pe) {
		t.Errorf("Resolve() error = %v, want PrefixError", err)
	}
}

func TestCommandPrefix_Cancelled(t *testing.T) {
	script := writeScript(t, `sleep 5; echo /usr/local`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CommandPrefix(script)(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestTrimPrefix(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"/usr/local\n", "/usr/local"},
		{"/usr/local\r\n", "/usr/local"},
		{"C:\\tools \t\r\n\n", `C:\tools`},
		{"  /opt/node", "  /opt/node"},
		{"\n", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := trimPrefix(tt.raw); got != tt.want {
			t.Errorf("trimPrefix(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
