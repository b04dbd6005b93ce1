package cache

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty namespace", func(c *Config) { c.Namespace = "" }},
		{"zero capacity", func(c *Config) { c.MemoryCapacity = 0 }},
		{"empty stats prefix", func(c *Config) { c.StatsPrefix = "" }},
		{"zero min search length", func(c *Config) { c.TTL.MinSearchLength = 0 }},
		{"zero hot memory ttl", func(c *Config) { c.TTL.Hot.Memory = 0 }},
		{"negative cold remote ttl", func(c *Config) { c.TTL.Cold.Remote = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDefaultRemoteConfig_RoundTrip(t *testing.T) {
	cfg := DefaultRemoteConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default remote config invalid: %v", err)
	}
	if cfg.CallTimeout <= 0 || cfg.Breaker.MinRequests == 0 {
		t.Errorf("conversion dropped fields: %+v", cfg)
	}
}

func TestNewRemoteCache_EmptyAddrIsNoop(t *testing.T) {
	remote, err := NewRemoteCache(RemoteConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := remote.(*NoopRemoteCache); !ok {
		t.Errorf("remote = %T, want NoopRemoteCache", remote)
	}
}
