package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggingPrepare_File(t *testing.T) {
	dir := t.TempDir()
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: filepath.Join(dir, "apx.log"), Mode: "overwrite"},
	}

	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("hidden message")
	log.Info("visible message")
	_ = log.Sync()

	data, err := os.ReadFile(conf.FileLogger.Destination)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "visible message") {
		t.Errorf("log does not contain info message:\n%s", data)
	}
	if strings.Contains(string(data), "hidden message") {
		t.Errorf("log contains debug message at normal level:\n%s", data)
	}
}

func TestLoggingPrepare_Report(t *testing.T) {
	dir := t.TempDir()
	rpt := &Report{entries: make(map[string]entry)}
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none", Destination: filepath.Join(dir, "apx.log")},
	}

	log, err := conf.Prepare(rpt)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("debug message")
	_ = log.Sync()

	if _, ok := rpt.entries["final.log"]; !ok {
		t.Error("report requested but log file was not stored")
	}
	data, err := os.ReadFile(conf.FileLogger.Destination)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "debug message") {
		t.Errorf("report log should be at debug level:\n%s", data)
	}
}

func TestPanicLogName(t *testing.T) {
	got := PanicLogName(filepath.Join("logs", "apx.log"))
	if got != filepath.Join("logs", "apx-panic.log") {
		t.Errorf("PanicLogName() = %q", got)
	}
}
