package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSecret(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestResolveSecret_EnvOnly(t *testing.T) {
	t.Setenv("WISH_TEST_SECRET", "env-value")
	t.Setenv("WISH_TEST_SECRET_FILE", "")

	value, err := ResolveSecret("WISH_TEST_SECRET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "env-value" {
		t.Errorf("got %q, want %q", value, "env-value")
	}
}

func TestResolveSecret_FileWinsOverEnv(t *testing.T) {
	t.Setenv("WISH_TEST_SECRET", "env-value")
	t.Setenv("WISH_TEST_SECRET_FILE", writeSecret(t, "  file-value \n\n"))

	value, err := ResolveSecret("WISH_TEST_SECRET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "file-value" {
		t.Errorf("got %q, want %q (file should win and be trimmed)", value, "file-value")
	}
}

func TestResolveSecret_NeitherSet(t *testing.T) {
	t.Setenv("WISH_TEST_SECRET", "")
	t.Setenv("WISH_TEST_SECRET_FILE", "")

	value, err := ResolveSecret("WISH_TEST_SECRET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "" {
		t.Errorf("got %q, want empty string", value)
	}
}

func TestResolveSecret_FileNotFound(t *testing.T) {
	t.Setenv("WISH_TEST_SECRET_FILE", "/nonexistent/path/to/secret")

	if _, err := ResolveSecret("WISH_TEST_SECRET"); err == nil {
		t.Error("expected error when file does not exist")
	}
}

func TestResolveCredentials(t *testing.T) {
	t.Setenv("WISH_TEST_ADMIN_USER", "admin")
	t.Setenv("WISH_TEST_ADMIN_USER_FILE", "")
	t.Setenv("WISH_TEST_ADMIN_PASS", "")
	t.Setenv("WISH_TEST_ADMIN_PASS_FILE", writeSecret(t, "hunter2\n"))

	creds, err := ResolveCredentials("WISH_TEST_ADMIN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.User != "admin" || creds.Pass != "hunter2" {
		t.Errorf("got %+v", creds)
	}
	if !creds.Set() {
		t.Error("expected credentials to be set")
	}

	if (Credentials{User: "admin"}).Set() {
		t.Error("credentials without password should not count as set")
	}
}
