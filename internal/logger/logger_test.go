package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env     string
		level   string
		wantErr bool
		enabled zapcore.Level
	}{
		{env: "prod", enabled: zapcore.InfoLevel},
		{env: "local", enabled: zapcore.DebugLevel},
		{env: "docker", level: "warn", enabled: zapcore.WarnLevel},
		{env: "staging", wantErr: true},
		{env: "dev", level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tt.enabled) {
				t.Errorf("level %s should be enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && l.Core().Enabled(tt.enabled-1) {
				t.Errorf("level %s should be disabled", tt.enabled-1)
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext must never return nil")
	}
	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected the stored logger")
	}
}
