package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNPrefersExplicitValue(t *testing.T) {
	cfg := DBConfig{DSN: "root@tcp(localhost:3306)/shopping_cartdb?parseTime=True"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(cfg.DSN, "shopping_cartdb") {
		t.Fatalf("explicit DSN should be untouched, got %q", cfg.DSN)
	}
}

func TestEnsureDSNBuildsFromLegacyVars(t *testing.T) {
	cfg := DBConfig{
		LegacyHost:     "db.internal",
		LegacyPort:     3306,
		LegacyUser:     "shop",
		LegacyPassword: "secret",
		LegacyName:     "shopping_cartdb",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "shop:secret@tcp(db.internal:3306)/shopping_cartdb?charset=utf8mb4&parseTime=True&loc=UTC"
	if cfg.DSN != want {
		t.Fatalf("unexpected DSN %q", cfg.DSN)
	}
}

func TestEnsureDSNReportsMissingLegacyVars(t *testing.T) {
	cfg := DBConfig{LegacyHost: "db.internal"}
	err := cfg.ensureDSN()
	if err == nil {
		t.Fatal("expected error for missing legacy vars")
	}
	if !strings.Contains(err.Error(), EnvDBUser) || !strings.Contains(err.Error(), EnvDBName) {
		t.Fatalf("error should name missing vars, got %v", err)
	}
}
