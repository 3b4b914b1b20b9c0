package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.Get(); got != Default() {
		t.Fatalf("Get() = %+v, want defaults", got)
	}
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.Update(Settings{Theme: ThemeDark, Currency: "EUR"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := reloaded.Get()
	if got.Theme != ThemeDark || got.Currency != "EUR" {
		t.Fatalf("reloaded settings = %+v", got)
	}
	if got.Symbol() != "€" {
		t.Fatalf("Symbol() = %q, want €", got.Symbol())
	}
}

func TestUpdateRejectsInvalid(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.Update(Settings{Theme: "neon", Currency: "USD"}); err == nil {
		t.Fatalf("unknown theme should be rejected")
	}
	if err := s.Update(Settings{Theme: ThemeLight, Currency: "XXX"}); err == nil {
		t.Fatalf("unknown currency should be rejected")
	}
	if got := s.Get(); got != Default() {
		t.Fatalf("failed update must not change state, got %+v", got)
	}
}

func TestOpenCorruptFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := s.Get(); got != Default() {
		t.Fatalf("corrupt file should fall back to defaults, got %+v", got)
	}
}
