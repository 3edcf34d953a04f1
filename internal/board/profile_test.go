package board

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write profile: %v", err)
	}
}

func TestProfileLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "garage", `{
		"board": "KC868-A16",
		"vendor": "Kincony",
		"relays": {"1": "Garage Door", "2": "Yard Light"},
		"inputs": {"HT1": "Temperature OK", "X01": "Door Button"}
	}`)

	loader, err := NewProfileLoader([]string{dir})
	if err != nil {
		t.Fatalf("NewProfileLoader failed: %v", err)
	}

	p, err := loader.Load("garage")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Board != "KC868-A16" {
		t.Errorf("board = %q", p.Board)
	}
	if p.Relays["1"] != "Garage Door" {
		t.Errorf("relay 1 label = %q", p.Relays["1"])
	}
	if p.Inputs["X01"] != "Door Button" {
		t.Errorf("input X01 label = %q", p.Inputs["X01"])
	}

	// Second load hits the cache and returns the same profile.
	again, err := loader.Load("garage")
	if err != nil {
		t.Fatalf("cached Load failed: %v", err)
	}
	if again != p {
		t.Error("cached load should return the same instance")
	}
}

func TestProfileLoaderMissingUsesDefault(t *testing.T) {
	loader, err := NewProfileLoader([]string{t.TempDir()})
	if err != nil {
		t.Fatalf("NewProfileLoader failed: %v", err)
	}

	p, err := loader.Load("nope")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Board != "KC868-A16" {
		t.Errorf("default board = %q", p.Board)
	}
	if len(p.Relays) != 16 {
		t.Errorf("default profile should label all 16 relays, got %d", len(p.Relays))
	}
}

func TestProfileLoaderRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"no-board":    `{"vendor": "Kincony"}`,
		"bad-relay":   `{"board": "B", "relays": {"17": "out of range"}}`,
		"bad-input":   `{"board": "B", "inputs": {"Y01": "no such input"}}`,
		"extra-field": `{"board": "B", "wiring": {}}`,
	}

	for name, content := range cases {
		writeProfile(t, dir, name, content)
	}

	loader, err := NewProfileLoader([]string{dir})
	if err != nil {
		t.Fatalf("NewProfileLoader failed: %v", err)
	}

	for name := range cases {
		if _, err := loader.Load(name); err == nil {
			t.Errorf("Load(%q) should fail validation", name)
		}
	}
}

func TestDefaultProfileCoversBoard(t *testing.T) {
	p := DefaultProfile()
	if len(p.Relays) != 16 {
		t.Errorf("relays = %d, want 16", len(p.Relays))
	}
	if len(p.Inputs) != 19 {
		t.Errorf("inputs = %d, want 19 (16 expander + 3 discrete)", len(p.Inputs))
	}
	for _, name := range []string{"HT1", "HT2", "HT3", "X01", "X16"} {
		if _, ok := p.Inputs[name]; !ok {
			t.Errorf("missing input label %q", name)
		}
	}
}
