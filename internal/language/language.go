package language

import (
	"path/filepath"
	"strings"
)

// Language identifies the source language of a unit under analysis.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Unknown    Language = "unknown"
)

// Universal marks a rule as applicable to every language.
const Universal = "*"

// Detect maps a file path to its language by extension.
func Detect(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return JavaScript
	case ".ts", ".mts", ".tsx":
		return TypeScript
	default:
		return Unknown
	}
}

// SourceExtensions lists the file extensions the engine analyzes.
func SourceExtensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".mts", ".tsx"}
}
