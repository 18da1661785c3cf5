package extractor

import (
	"github.com/Sharjeel-Saleem-06/CodeSentinel-sub001/internal/language"
)

// SourceUnit is the immutable input of a single scan.
type SourceUnit struct {
	Text     string
	Language language.Language
}

// Location points into the source text. Line is 1-based, Column is the
// 0-based character offset within the line.
type Location struct {
	Line      int `json:"line"`
	Column    int `json:"column"`
	EndLine   int `json:"end_line,omitempty"`
	EndColumn int `json:"end_column,omitempty"`
}

// ExportStatus describes how a declaration is positioned relative to the
// module surface.
type ExportStatus int

const (
	ExportTopLevel ExportStatus = iota
	ExportNamed
	ExportDefault
	ExportNested
)

// String returns string representation of export status
func (e ExportStatus) String() string {
	switch e {
	case ExportTopLevel:
		return "top-level"
	case ExportNamed:
		return "export"
	case ExportDefault:
		return "export-default"
	case ExportNested:
		return "nested"
	default:
		return "unknown"
	}
}

// Param describes one function parameter.
type Param struct {
	Name       string `json:"name"`
	Optional   bool   `json:"optional,omitempty"`
	Rest       bool   `json:"rest,omitempty"`
	HasDefault bool   `json:"has_default,omitempty"`
}

// FunctionDecl is a named function declaration or a function-valued binding.
type FunctionDecl struct {
	Name      string       `json:"name"`
	Params    []Param      `json:"params"`
	Async     bool         `json:"async,omitempty"`
	Generator bool         `json:"generator,omitempty"`
	Export    ExportStatus `json:"export"`
	Loc       Location     `json:"loc"`
	LineCount int          `json:"line_count"`
}

// PropertyDecl is a class property.
type PropertyDecl struct {
	Name       string   `json:"name"`
	Visibility string   `json:"visibility"`
	Static     bool     `json:"static,omitempty"`
	Readonly   bool     `json:"readonly,omitempty"`
	Loc        Location `json:"loc"`
}

// ClassDecl is a class declaration with its members.
type ClassDecl struct {
	Name       string         `json:"name"`
	SuperClass string         `json:"superclass,omitempty"`
	Abstract   bool           `json:"abstract,omitempty"`
	Export     ExportStatus   `json:"export"`
	Methods    []FunctionDecl `json:"methods"`
	Properties []PropertyDecl `json:"properties"`
	Loc        Location       `json:"loc"`
}

// ImportDecl is one import statement.
type ImportDecl struct {
	Source    string   `json:"source"`
	Names     []string `json:"names"`
	Default   bool     `json:"default,omitempty"`
	Namespace bool     `json:"namespace,omitempty"`
	Loc       Location `json:"loc"`
}

// VarKind is the three-way declaration kind of a variable binding.
type VarKind int

const (
	KindLegacy       VarKind = iota // var
	KindReassignable                // let
	KindNoReassign                  // const
)

// String returns string representation of variable kind
func (k VarKind) String() string {
	switch k {
	case KindLegacy:
		return "var"
	case KindReassignable:
		return "let"
	case KindNoReassign:
		return "const"
	default:
		return "unknown"
	}
}

// VariableDecl is a non-function variable binding together with every usage
// site found in the unit.
type VariableDecl struct {
	Name     string       `json:"name"`
	Kind     VarKind      `json:"kind"`
	Export   ExportStatus `json:"export"`
	Loc      Location     `json:"loc"`
	Usages   []Location   `json:"usages"`
	IsUnused bool         `json:"is_unused"`
}

// TreeNode is one node of the simplified AST view handed to downstream
// consumers. Construction is capped at depth 10; nodes at the cap carry no
// children.
type TreeNode struct {
	Label    string      `json:"label"`
	Line     int         `json:"line"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Result carries every structural fact derived from a source unit. Errors
// lists non-fatal parse problems; when it is non-empty the fact lists may be
// incomplete or empty.
type Result struct {
	Functions []FunctionDecl `json:"functions"`
	Classes   []ClassDecl    `json:"classes"`
	Imports   []ImportDecl   `json:"imports"`
	Variables []VariableDecl `json:"variables"`
	Tree      *TreeNode      `json:"tree,omitempty"`
	Errors    []string       `json:"errors,omitempty"`
}
