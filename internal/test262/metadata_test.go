package test262

import "testing"

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantIncludes []string
		wantFlags    []string
		wantBody     string
	}{
		{
			name: "includes and flags",
			raw: `/*---
includes: [compareArray.js, propertyHelper.js]
flags: [onlyStrict]
---*/
{"kind":"Program","body":[]}`,
			wantIncludes: []string{"compareArray.js", "propertyHelper.js"},
			wantFlags:    []string{"onlyStrict"},
			wantBody:     `{"kind":"Program","body":[]}`,
		},
		{
			name:     "no frontmatter",
			raw:      `{"kind":"Program","body":[]}`,
			wantBody: `{"kind":"Program","body":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := splitFrontmatter(tt.raw)
			if err != nil {
				t.Fatalf("splitFrontmatter() error = %v", err)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if len(meta.Includes) != len(tt.wantIncludes) {
				t.Fatalf("includes = %v, want %v", meta.Includes, tt.wantIncludes)
			}
			for i, inc := range tt.wantIncludes {
				if meta.Includes[i] != inc {
					t.Errorf("includes[%d] = %q, want %q", i, meta.Includes[i], inc)
				}
			}
			for i, fl := range tt.wantFlags {
				if meta.Flags[i] != fl {
					t.Errorf("flags[%d] = %q, want %q", i, meta.Flags[i], fl)
				}
			}
		})
	}
}

func TestMetadataHasFlag(t *testing.T) {
	var nilMeta *Metadata
	if nilMeta.HasFlag("async") {
		t.Error("nil *Metadata should report no flags")
	}

	meta := &Metadata{Flags: []string{"async", "module"}}
	if !meta.HasFlag("async") {
		t.Error("expected HasFlag(\"async\") to be true")
	}
	if meta.HasFlag("onlyStrict") {
		t.Error("expected HasFlag(\"onlyStrict\") to be false")
	}
}

func TestSplitFrontmatterNegative(t *testing.T) {
	raw := `/*---
negative:
  phase: runtime
  type: TypeError
---*/
{"kind":"Program","body":[]}`

	meta, _, err := splitFrontmatter(raw)
	if err != nil {
		t.Fatalf("splitFrontmatter() error = %v", err)
	}
	if meta.Negative == nil {
		t.Fatal("expected a negative clause")
	}
	if meta.Negative.Phase != "runtime" || meta.Negative.Type != "TypeError" {
		t.Errorf("negative = %+v, want phase=runtime type=TypeError", meta.Negative)
	}
}
