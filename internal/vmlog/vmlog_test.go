package vmlog

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNopIsSilent(t *testing.T) {
	log := Nop()
	// Should not panic even with no configured core.
	log.Info("hello")
	log.Debug("hello")
	log.Warn("hello")
	log.Error("hello")
	if err := log.Sync(); err != nil {
		// zap.NewNop()'s Sync() is always nil; a non-nil error here would
		// mean New(nil) stopped falling back to it.
		t.Errorf("Sync() on a nop logger returned %v, want nil", err)
	}
}

func TestNewWrapsNilAsNop(t *testing.T) {
	log := New(nil)
	if log == nil {
		t.Fatal("New(nil) should still return a usable Logger")
	}
	log.Info("no core configured, should not panic")
}

func TestLoggerEmitsThroughProvidedCore(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := New(zap.New(core))

	log.Info("script evaluated", zap.String("file", "a.js"))
	log.Debug("should be filtered by level")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 (Debug is below the observer's InfoLevel)", len(entries))
	}
	if entries[0].Message != "script evaluated" {
		t.Errorf("Message = %q, want \"script evaluated\"", entries[0].Message)
	}
}

func TestWithAddsFieldsToChildLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := New(zap.New(core))

	child := log.With(zap.String("runID", "abc-123"))
	child.Info("starting run")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	found := false
	for _, f := range entries[0].Context {
		if f.Key == "runID" && f.String == "abc-123" {
			found = true
		}
	}
	if !found {
		t.Error("With() should decorate the child logger's entries with the given field")
	}
}
