package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Environments(t *testing.T) {
	for _, env := range []string{"prod", "local", "dev", "docker"} {
		t.Run(env, func(t *testing.T) {
			l, err := New(env, "")
			if err != nil {
				t.Fatalf("New(%q) failed: %v", env, err)
			}
			if l == nil {
				t.Fatal("nil logger")
			}
		})
	}
}

func TestNew_UnknownEnvironment(t *testing.T) {
	if _, err := New("staging", ""); err == nil {
		t.Fatal("expected error for unknown env")
	}
}

func TestNew_LevelOverride(t *testing.T) {
	l, err := New("prod", "warn")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}

	if _, err := New("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragchat.log")

	l, err := New("prod", "info", path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Info("hello file")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestFromContext_FallsBackToNop(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger")
	}
}

func TestWith_AddsFields(t *testing.T) {
	l, err := New("prod", "")
	if err != nil {
		t.Fatal(err)
	}
	ctx := ContextWithLogger(context.Background(), l)
	ctx = With(ctx, zap.String("corpus_id", "c-1"))

	if FromContext(ctx) == l {
		t.Error("expected a derived logger")
	}
}
