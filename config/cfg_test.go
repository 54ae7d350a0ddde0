package config

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/rupor-github/gencfg"

	"apx/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if !cfg.Resolver.FindExternal {
		t.Error("External lookup should be enabled by default")
	}
	if cfg.Resolver.ModuleName != "autoprefixer" {
		t.Errorf("ModuleName = %q, want autoprefixer", cfg.Resolver.ModuleName)
	}
	if cfg.Resolver.Policy != common.ResolvePolicyOnce {
		t.Errorf("Policy = %v, want once", cfg.Resolver.Policy)
	}
	if cfg.Prefixer.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Prefixer.Timeout)
	}
	if len(cfg.Prefixer.Browsers) == 0 {
		t.Error("Default browsers list is empty")
	}
}

func TestLoadConfiguration_PlatformDefaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	wantNpm, wantNode := "npm", "node"
	if runtime.GOOS == "windows" {
		wantNpm, wantNode = "npm.cmd", "node.exe"
	}
	want := []string{wantNpm, "config", "get", "prefix"}
	if !slices.Equal(cfg.Resolver.PrefixCommand, want) {
		t.Errorf("PrefixCommand = %q, want %q", cfg.Resolver.PrefixCommand, want)
	}
	for _, arg := range append(cfg.Resolver.PrefixCommand, cfg.Prefixer.Node) {
		if strings.Contains(arg, "{{") {
			t.Errorf("template action left in %q", arg)
		}
	}
	if cfg.Prefixer.Node != wantNode {
		t.Errorf("Node = %q, want %q", cfg.Prefixer.Node, wantNode)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
resolver:
  find_external: false
  module_path: /opt/autoprefixer
  policy: always
  global_prefix: /opt/node
prefixer:
  browsers: ["last 1 chrome version"]
  timeout: 5s
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Resolver.FindExternal {
		t.Error("Expected FindExternal to be false")
	}
	if cfg.Resolver.ModulePath != "/opt/autoprefixer" {
		t.Errorf("ModulePath = %q", cfg.Resolver.ModulePath)
	}
	if cfg.Resolver.Policy != common.ResolvePolicyAlways {
		t.Errorf("Policy = %v, want always", cfg.Resolver.Policy)
	}
	if cfg.Resolver.GlobalPrefix != "/opt/node" {
		t.Errorf("GlobalPrefix = %q", cfg.Resolver.GlobalPrefix)
	}
	if len(cfg.Resolver.PrefixCommand) != 4 {
		t.Errorf("PrefixCommand = %q, default should stay", cfg.Resolver.PrefixCommand)
	}
	if len(cfg.Prefixer.Browsers) != 1 || cfg.Prefixer.Browsers[0] != "last 1 chrome version" {
		t.Errorf("Browsers = %v, file value should replace defaults", cfg.Prefixer.Browsers)
	}
	if cfg.Prefixer.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Prefixer.Timeout)
	}
	// not mentioned in the file - defaults stay
	if cfg.Resolver.ModuleName != "autoprefixer" {
		t.Errorf("ModuleName = %q, want default", cfg.Resolver.ModuleName)
	}
	if len(cfg.Prefixer.Ignore) == 0 {
		t.Error("Default ignore patterns were lost")
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("Console level = %q, want debug", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `version: 1
resolver:
  find_external: true
  invalid indent
`)
	if _, err := LoadConfiguration(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	path := writeConfig(t, `version: 1
formatOnSave: true
`)
	if _, err := LoadConfiguration(path); err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong version", "version: 2\n"},
		{"empty module name", "version: 1\nresolver:\n  module_name: \"\"\n"},
		{"empty prefix command", "version: 1\nresolver:\n  prefix_command: []\n"},
		{"unknown policy", "version: 1\nresolver:\n  policy: sometimes\n"},
		{"bad console level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if strings.Contains(string(data), "{{") {
		t.Error("Prepare() left template actions unexpanded")
	}
	if _, err = unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Resolver.Policy = common.ResolvePolicyAlways

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "policy: always") {
		t.Errorf("Dump() does not contain policy as text:\n%s", data)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Resolver.Policy != common.ResolvePolicyAlways {
		t.Errorf("Policy after dump/load = %v", cfg2.Resolver.Policy)
	}
	if cfg2.Prefixer.Timeout != cfg.Prefixer.Timeout {
		t.Errorf("Timeout after dump/load = %v, want %v", cfg2.Prefixer.Timeout, cfg.Prefixer.Timeout)
	}
}
