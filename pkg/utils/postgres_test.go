package utils

import "testing"

func TestPostgresPoolDefaults(t *testing.T) {
	got := PostgresPoolConfig{}.withDefaults()
	if got.MaxOpenConns != 25 || got.MaxIdleConns != 10 {
		t.Fatalf("unexpected pool defaults: %+v", got)
	}
	if got.MaxIdleConns > got.MaxOpenConns {
		t.Fatalf("idle conns must not exceed open conns: %+v", got)
	}
	if got.PingTimeout <= 0 {
		t.Fatalf("expected ping timeout default, got %v", got.PingTimeout)
	}
}

func TestPostgresPoolDefaultsKeepExplicitValues(t *testing.T) {
	got := PostgresPoolConfig{MaxOpenConns: 5, MaxIdleConns: 2}.withDefaults()
	if got.MaxOpenConns != 5 || got.MaxIdleConns != 2 {
		t.Fatalf("explicit values overridden: %+v", got)
	}
}
