package builtins

import "testing"

func TestParseManifest(t *testing.T) {
	data := []byte("name: arithmetic-only\nplugins:\n  - core\n  - error\n  - math\n  - number\n")
	plugins, err := ParseManifest(data)
	if err != nil {
		t.Fatalf("ParseManifest error = %v", err)
	}
	if len(plugins) != 4 {
		t.Fatalf("len(plugins) = %d, want 4", len(plugins))
	}
	ids := make(map[string]bool, len(plugins))
	for _, p := range plugins {
		ids[p.ID] = true
	}
	for _, want := range []string{"core", "error", "math", "number"} {
		if !ids[want] {
			t.Errorf("missing plugin %q in parsed manifest", want)
		}
	}
}

func TestParseManifestDuplicatePlugin(t *testing.T) {
	data := []byte("name: dup\nplugins:\n  - core\n  - core\n  - error\n")
	plugins, err := ParseManifest(data)
	if err != nil {
		t.Fatalf("ParseManifest error = %v", err)
	}
	if len(plugins) != 2 {
		t.Fatalf("len(plugins) = %d, want 2 (duplicate collapsed)", len(plugins))
	}
}

func TestParseManifestUnknownPlugin(t *testing.T) {
	data := []byte("name: bogus\nplugins:\n  - core\n  - not-a-real-plugin\n")
	if _, err := ParseManifest(data); err == nil {
		t.Fatal("expected error for unknown plugin name, got nil")
	}
}

func TestParseManifestEmpty(t *testing.T) {
	data := []byte("name: empty\nplugins: []\n")
	if _, err := ParseManifest(data); err == nil {
		t.Fatal("expected error for manifest with no plugins, got nil")
	}
}
