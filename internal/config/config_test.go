package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"BRIEF_ADDRESS", "BRIEF_NOTIFY_MODE", "R2_BUCKET", "BRIEF_WORKERS", "SMTP_FROM_EMAIL"} {
		t.Setenv(key, "")
	}
	t.Setenv("SMTP_USER", "mailer@example.com")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Address != defaultAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.R2Bucket != "creative-direction-decks" {
		t.Fatalf("unexpected bucket %q", cfg.R2Bucket)
	}
	if cfg.NotifyMode != NotifyDirect {
		t.Fatalf("expected direct mode, got %q", cfg.NotifyMode)
	}
	if len(cfg.SigningSecret) == 0 {
		t.Fatalf("expected generated signing secret")
	}
	if cfg.SMTPFromEmail != "mailer@example.com" {
		t.Fatalf("expected SMTP sender to fall back to user, got %q", cfg.SMTPFromEmail)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BRIEF_NOTIFY_MODE", "QUEUE")
	t.Setenv("BRIEF_SIGNED_TTL", "90s")
	t.Setenv("BRIEF_WORKERS", "-3")
	t.Setenv("R2_USE_SSL", "false")
	t.Setenv("R2_PUBLIC_BASE_URL", "https://pub-abc.r2.dev/")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NotifyMode != NotifyQueue {
		t.Fatalf("expected queue mode, got %q", cfg.NotifyMode)
	}
	if cfg.SignedURLTTL != 90*time.Second {
		t.Fatalf("unexpected ttl %s", cfg.SignedURLTTL)
	}
	if cfg.Workers != defaultWorkerCount {
		t.Fatalf("expected invalid worker count to reset, got %d", cfg.Workers)
	}
	if cfg.R2UseSSL {
		t.Fatalf("expected ssl disabled")
	}
	if cfg.R2PublicBaseURL != "https://pub-abc.r2.dev" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.R2PublicBaseURL)
	}
}
