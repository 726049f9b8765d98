package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  s3cret\n"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, err := Load(Source{Name: "api token", File: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "s3cret" {
		t.Fatalf("expected trimmed secret, got %q", got)
	}
}

func TestLoadFilePrecedesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("from-file"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	t.Setenv("CAREERCOPILOT_TEST_SECRET", "from-env")

	got, err := Load(Source{Name: "api token", File: path, Env: "CAREERCOPILOT_TEST_SECRET"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file to win, got %q", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CAREERCOPILOT_TEST_SECRET", "from-env")

	got, err := Load(Source{Name: "api token", Env: "CAREERCOPILOT_TEST_SECRET", Value: "inline"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("expected env to win over inline value, got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "api token"}); err == nil {
		t.Fatal("expected an error for an empty source")
	}

	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Load(Source{Name: "api token", File: path}); err == nil {
		t.Fatal("expected an error for an empty secret file")
	}

	if _, err := Load(Source{Name: "api token", File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
