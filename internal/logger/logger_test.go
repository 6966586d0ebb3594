package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	if _, err := os.Stat(filepath.Join(configDir, "logs")); os.IsNotExist(err) {
		t.Error("log directory was not created")
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if filepath.Base(LogFile) != "soulsync.log" {
		t.Errorf("LogFile = %q", LogFile)
	}

	Warn("store document unreadable", "path", "/tmp/users.json")
	Error("save failed")

	data, err := os.ReadFile(LogFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "store document unreadable") {
		t.Errorf("warning not written to log file: %q", data)
	}
}

func TestInitDebugMode(t *testing.T) {
	if err := Init(Config{Debug: true, ConfigDir: t.TempDir()}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	Debug("debug message")
	With("assistant").Debug("tagged message")
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	With("storage").Warn("discarded")
}
