package language

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		path     string
		expected Language
	}{
		{"app.js", JavaScript},
		{"lib/util.mjs", JavaScript},
		{"legacy.cjs", JavaScript},
		{"components/Button.jsx", JavaScript},
		{"server.ts", TypeScript},
		{"worker.mts", TypeScript},
		{"components/Button.tsx", TypeScript},
		{"INDEX.TS", TypeScript},
		{"README.md", Unknown},
		{"script.py", Unknown},
		{"noextension", Unknown},
	}

	for _, tt := range tests {
		if got := Detect(tt.path); got != tt.expected {
			t.Errorf("Detect(%q) = %v, expected %v", tt.path, got, tt.expected)
		}
	}
}

func TestSourceExtensions(t *testing.T) {
	exts := SourceExtensions()
	if len(exts) == 0 {
		t.Fatal("Expected non-empty extension list")
	}
	for _, ext := range exts {
		if Detect("file"+ext) == Unknown {
			t.Errorf("Extension %s should map to a known language", ext)
		}
	}
}
