package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store.Type != "mongodb" {
		t.Errorf("Expected default store type mongodb, got %q", cfg.Store.Type)
	}
	if cfg.Dashboard.LeaderboardSize != 3 {
		t.Errorf("Expected leaderboard size 3, got %d", cfg.Dashboard.LeaderboardSize)
	}
	if cfg.Dashboard.HistoryOffset != -3*time.Hour {
		t.Errorf("Expected history offset -3h, got %v", cfg.Dashboard.HistoryOffset)
	}
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	t.Setenv("STORE_TYPE", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for unsupported store type")
	}
}

func TestStoreConfig_DSNDefaultPorts(t *testing.T) {
	s := StoreConfig{Host: "db", Name: "gacha", User: "u", Password: "p", SSLMode: "disable"}

	if got, want := s.PostgresDSN(), "postgres://u:p@db:5432/gacha?sslmode=disable"; got != want {
		t.Errorf("PostgresDSN = %q, want %q", got, want)
	}
	if got, want := s.MySQLDSN(), "u:p@tcp(db:3306)/gacha?parseTime=true"; got != want {
		t.Errorf("MySQLDSN = %q, want %q", got, want)
	}
}
