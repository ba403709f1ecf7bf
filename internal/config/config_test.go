package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "test-client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "test-client-secret")
	t.Setenv("GOOGLE_REDIRECT_URI", "http://localhost:3000/oauth/callback")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
}

func TestLoadConfig(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Google.ClientID != "test-client-id" || cfg.JWT.Secret == "" {
		t.Fatalf("unexpected config values: %+v", cfg)
	}
	if cfg.Server.Port != "5000" {
		t.Fatalf("expected default port 5000, got %q", cfg.Server.Port)
	}
	if cfg.MongoDB.Database != "authgate" {
		t.Fatalf("expected default database, got %q", cfg.MongoDB.Database)
	}
}

func TestLoadConfig_MissingCredentialsFatal(t *testing.T) {
	setRequired(t)
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	for _, want := range []string{"GOOGLE_CLIENT_SECRET", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error should name %s: %v", want, err)
		}
	}
}
