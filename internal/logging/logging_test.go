package logging

import (
	"path/filepath"
	"testing"
)

func TestSetup(t *testing.T) {
	log, err := Setup("debug", "")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	log.Debug("hello")
}

func TestSetupWithFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "agent.log")
	log, err := Setup("info", file)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	log.Info("hello")
	_ = log.Sync()
}

func TestSetupInvalidLevel(t *testing.T) {
	if _, err := Setup("loud", ""); err == nil {
		t.Error("expected error for invalid level")
	}
}
