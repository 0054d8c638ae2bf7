package testutil

import (
	"os"
	"testing"
)

// RequireTestEnvironment fails the test immediately unless GO_ENV is "test".
// The integration and acceptance suites swap the configured database for an
// in-memory one; running them against a development or production
// DATABASE_URL would be destructive.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("Tests must run with GO_ENV=test, got %q", env)
	}
}

// MustSetTestEnvironment forces GO_ENV to "test". Call it first in suite
// setup, before config.Load reads the environment.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
	RequireTestEnvironment(t)
}
