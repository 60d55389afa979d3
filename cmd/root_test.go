package cmd

import (
	"context"
	"testing"

	"github.com/spigell/airecruiter/internal/storage"
)

func TestGetConfigFromEnvironment(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017")
	t.Setenv("PORT", "9001")

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.MongoDB.URI != "mongodb://db.internal:27017" {
		t.Fatalf("expected uri from MONGODB_URI, got %q", config.MongoDB.URI)
	}
	if config.MongoDB.Database != storage.DefaultDatabase {
		t.Fatalf("expected default database, got %q", config.MongoDB.Database)
	}
	if config.Port != 9001 {
		t.Fatalf("expected port from PORT, got %d", config.Port)
	}
	if !config.AI.Enabled || config.AI.Provider != providerGemini {
		t.Fatalf("unexpected ai defaults: %+v", config.AI)
	}
	if config.Scheduler.PruneDays != 30 {
		t.Fatalf("expected prune-days default, got %d", config.Scheduler.PruneDays)
	}
}

func TestGetConfigDefaultPort(t *testing.T) {
	t.Setenv("PORT", "")

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Port != defaultPort {
		t.Fatalf("expected %d, got %d", defaultPort, config.Port)
	}
}

func TestPruneRejectsNonPositiveDays(t *testing.T) {
	if err := prune(context.Background(), 0, true); err == nil {
		t.Fatal("expected error for zero days")
	}
}
