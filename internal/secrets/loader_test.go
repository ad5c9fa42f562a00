package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	got, err := Load(Source{Name: "gemini api key", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file value, got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "gemini api key"}); err == nil || !strings.Contains(err.Error(), "gemini api key is not configured") {
		t.Fatalf("expected not configured error, got %v", err)
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	if _, err := Load(Source{File: empty}); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}

	if _, err := Load(Source{File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool")
	content := "# rotation pool\nkey-a\n\n  key-b  \n#key-c\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write pool file: %v", err)
	}

	got, err := LoadList(path, []string{" key-d ", ""}, "gemini key pool")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"key-a", "key-b", "key-d"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}

	none, err := LoadList("", nil, "")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list without error, got %v %v", none, err)
	}
}
