package connect

import (
	"context"
	"testing"

	"github.com/kailas-cloud/unidash/internal/config"
	"github.com/kailas-cloud/unidash/internal/db/memory"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DatabaseConfig
		wantErr bool
	}{
		{"memory", config.DatabaseConfig{Driver: config.DriverMemory}, false},
		{"valkey without addrs", config.DatabaseConfig{Driver: config.DriverValkey}, true},
		{"redis without addrs", config.DatabaseConfig{Driver: config.DriverRedis}, true},
		{"unknown driver", config.DatabaseConfig{Driver: "etcd"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer s.Close()
			if _, ok := s.(*memory.Store); !ok {
				t.Errorf("got %T, want *memory.Store", s)
			}
			if err := s.Ping(context.Background()); err != nil {
				t.Errorf("Ping: %v", err)
			}
		})
	}
}
