package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Extractor derives structural facts from a source unit. It never panics
// past its boundary: any internal failure degrades to an empty result with a
// recorded error string.
type Extractor struct {
	logger *zap.Logger
}

// New creates a new extractor instance
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

var (
	funcDeclRe     = regexp.MustCompile(`^\s*(export\s+(default\s+)?)?(async\s+)?function\s*(\*)?\s*([A-Za-z_$][\w$]*)\s*\(([^)]*)\)`)
	funcExprBindRe = regexp.MustCompile(`^\s*(export\s+)?(var|let|const)\s+([A-Za-z_$][\w$]*)\s*=\s*(async\s+)?function\s*(\*)?\s*\(([^)]*)\)`)
	arrowBindRe    = regexp.MustCompile(`^\s*(export\s+)?(var|let|const)\s+([A-Za-z_$][\w$]*)(?:\s*:[^=]*)?\s*=\s*(async\s+)?(?:\(([^)]*)\)|([A-Za-z_$][\w$]*))\s*=>`)
	classRe        = regexp.MustCompile(`^\s*(export\s+(default\s+)?)?(abstract\s+)?class\s+([A-Za-z_$][\w$]*)(?:\s+extends\s+([A-Za-z_$][\w$.]*))?`)
	varDeclRe      = regexp.MustCompile(`^\s*(export\s+)?(var|let|const)\s+(.+)$`)
	importFromRe   = regexp.MustCompile(`^\s*import\s+(?:type\s+)?(.+?)\s+from\s+['"]([^'"]+)['"]`)
	importBareRe   = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)
	methodRe       = regexp.MustCompile(`^\s*(?:(public|private|protected)\s+)?(?:(static)\s+)?(?:(abstract)\s+)?(?:(async)\s+)?(\*)?\s*(?:(?:get|set)\s+)?([A-Za-z_$#][\w$]*)\s*\??\s*\(([^)]*)\)`)
	propRe         = regexp.MustCompile(`^\s*(?:(public|private|protected)\s+)?(?:(static)\s+)?(?:(readonly)\s+)?([A-Za-z_$#][\w$]*)\s*\??\s*(:|=|;|$)`)
	identLeadRe    = regexp.MustCompile(`^\s*([A-Za-z_$][\w$]*)`)
)

// memberKeywords are statement keywords that must not be mistaken for class
// member names.
var memberKeywords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "while": {}, "do": {}, "switch": {},
	"catch": {}, "return": {}, "new": {}, "typeof": {}, "delete": {},
	"try": {}, "function": {}, "class": {}, "case": {}, "throw": {},
}

// Extract parses a source unit and returns its structural facts plus the
// simplified tree view. On failure the returned result has empty fact lists
// and a descriptive entry in Errors.
func (e *Extractor) Extract(unit SourceUnit) (res *Result) {
	res = &Result{}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("structural extraction failed",
				zap.String("language", string(unit.Language)),
				zap.Any("cause", r))
			*res = Result{Errors: []string{fmt.Sprintf("parse failure: %v", r)}}
		}
	}()

	lines := strings.Split(unit.Text, "\n")
	sanitized := sanitize(lines)
	depths := braceDepths(sanitized)

	e.extractImports(lines, sanitized, res)
	e.extractClasses(sanitized, depths, res)
	e.extractFunctions(sanitized, depths, res)
	e.extractVariables(sanitized, depths, res)
	e.collectUsages(sanitized, res)
	res.Tree = buildTree(sanitized)

	return res
}

// extractImports parses import statements. The specifier string is read from
// the raw line because sanitization blanks string-literal content.
func (e *Extractor) extractImports(lines, sanitized []string, res *Result) {
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(sanitized[i]), "import") {
			continue
		}
		if m := importFromRe.FindStringSubmatch(line); m != nil {
			decl := ImportDecl{
				Source: m[2],
				Loc:    Location{Line: i + 1, Column: indexOfNonSpace(line)},
			}
			parseImportClause(m[1], &decl)
			res.Imports = append(res.Imports, decl)
			continue
		}
		if m := importBareRe.FindStringSubmatch(line); m != nil {
			res.Imports = append(res.Imports, ImportDecl{
				Source: m[1],
				Loc:    Location{Line: i + 1, Column: indexOfNonSpace(line)},
			})
		}
	}
}

// parseImportClause fills local names and the default/namespace flags from
// the text between `import` and `from`.
func parseImportClause(clause string, decl *ImportDecl) {
	clause = strings.TrimSpace(clause)
	for _, part := range splitTopLevel(clause, ',') {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "* as "):
			decl.Namespace = true
			decl.Names = append(decl.Names, strings.TrimSpace(strings.TrimPrefix(part, "* as ")))
		case strings.HasPrefix(part, "{"):
			inner := strings.Trim(part, "{} \t")
			for _, name := range strings.Split(inner, ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				// `a as b` binds b locally.
				if idx := strings.Index(name, " as "); idx >= 0 {
					name = strings.TrimSpace(name[idx+4:])
				}
				decl.Names = append(decl.Names, name)
			}
		default:
			decl.Default = true
			decl.Names = append(decl.Names, part)
		}
	}
}

// extractFunctions records named function declarations and function-valued
// bindings (arrow or anonymous function expressions bound to an identifier).
func (e *Extractor) extractFunctions(sanitized []string, depths []int, res *Result) {
	for i, line := range sanitized {
		if m := funcDeclRe.FindStringSubmatchIndex(line); m != nil {
			end := findBlockEnd(sanitized, i, m[1])
			res.Functions = append(res.Functions, FunctionDecl{
				Name:      group(line, m, 5),
				Params:    parseParams(group(line, m, 6)),
				Async:     group(line, m, 3) != "",
				Generator: group(line, m, 4) != "",
				Export:    exportStatusOf(group(line, m, 1) != "", group(line, m, 2) != "", depths[i]),
				Loc:       Location{Line: i + 1, Column: m[10], EndLine: end + 1},
				LineCount: end - i + 1,
			})
			continue
		}
		if m := funcExprBindRe.FindStringSubmatchIndex(line); m != nil {
			end := findBlockEnd(sanitized, i, m[1])
			res.Functions = append(res.Functions, FunctionDecl{
				Name:      group(line, m, 3),
				Params:    parseParams(group(line, m, 6)),
				Async:     group(line, m, 4) != "",
				Generator: group(line, m, 5) != "",
				Export:    exportStatusOf(group(line, m, 1) != "", false, depths[i]),
				Loc:       Location{Line: i + 1, Column: m[6], EndLine: end + 1},
				LineCount: end - i + 1,
			})
			continue
		}
		if m := arrowBindRe.FindStringSubmatchIndex(line); m != nil {
			params := group(line, m, 5)
			if params == "" && group(line, m, 6) != "" {
				params = group(line, m, 6)
			}
			end := findBlockEnd(sanitized, i, m[1])
			res.Functions = append(res.Functions, FunctionDecl{
				Name:      group(line, m, 3),
				Params:    parseParams(params),
				Async:     group(line, m, 4) != "",
				Export:    exportStatusOf(group(line, m, 1) != "", false, depths[i]),
				Loc:       Location{Line: i + 1, Column: m[6], EndLine: end + 1},
				LineCount: end - i + 1,
			})
		}
	}
}

// extractClasses records class declarations with their methods and
// properties. Members sit exactly one brace level below the class line.
func (e *Extractor) extractClasses(sanitized []string, depths []int, res *Result) {
	for i, line := range sanitized {
		m := classRe.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		end := findBlockEnd(sanitized, i, m[1])
		decl := ClassDecl{
			Name:       group(line, m, 4),
			SuperClass: group(line, m, 5),
			Abstract:   group(line, m, 3) != "",
			Export:     exportStatusOf(group(line, m, 1) != "", group(line, m, 2) != "", depths[i]),
			Loc:        Location{Line: i + 1, Column: m[8], EndLine: end + 1},
		}

		memberDepth := depths[i] + 1
		for j := i + 1; j < end && j < len(sanitized); j++ {
			if depths[j] != memberDepth {
				continue
			}
			body := sanitized[j]
			trimmed := strings.TrimSpace(body)
			if trimmed == "" || trimmed == "}" {
				continue
			}
			if mm := methodRe.FindStringSubmatchIndex(body); mm != nil {
				name := group(body, mm, 6)
				if _, kw := memberKeywords[name]; !kw {
					mEnd := findBlockEnd(sanitized, j, mm[1])
					decl.Methods = append(decl.Methods, FunctionDecl{
						Name:      name,
						Params:    parseParams(group(body, mm, 7)),
						Async:     group(body, mm, 4) != "",
						Generator: group(body, mm, 5) != "",
						Export:    ExportNested,
						Loc:       Location{Line: j + 1, Column: mm[12], EndLine: mEnd + 1},
						LineCount: mEnd - j + 1,
					})
					continue
				}
			}
			if mm := propRe.FindStringSubmatchIndex(body); mm != nil && !strings.Contains(trimmed, "(") {
				name := group(body, mm, 4)
				if _, kw := memberKeywords[name]; kw {
					continue
				}
				visibility := group(body, mm, 1)
				if visibility == "" {
					visibility = "public"
				}
				decl.Properties = append(decl.Properties, PropertyDecl{
					Name:       name,
					Visibility: visibility,
					Static:     group(body, mm, 2) != "",
					Readonly:   group(body, mm, 3) != "",
					Loc:        Location{Line: j + 1, Column: mm[8]},
				})
			}
		}

		res.Classes = append(res.Classes, decl)
	}
}

// extractVariables records non-function bindings with their declaration
// kind. Function-valued bindings were already claimed by extractFunctions.
func (e *Extractor) extractVariables(sanitized []string, depths []int, res *Result) {
	for i, line := range sanitized {
		m := varDeclRe.FindStringSubmatchIndex(line)
		if m == nil || arrowBindRe.MatchString(line) || funcExprBindRe.MatchString(line) {
			continue
		}
		kind := varKindOf(group(line, m, 2))
		export := exportStatusOf(group(line, m, 1) != "", false, depths[i])

		rest := line[m[6]:m[7]]
		if idx := topLevelIndex(rest, ';'); idx >= 0 {
			rest = rest[:idx]
		}
		offset := m[6]
		for _, part := range splitTopLevel(rest, ',') {
			if lead := identLeadRe.FindStringSubmatchIndex(part); lead != nil {
				res.Variables = append(res.Variables, VariableDecl{
					Name:   part[lead[2]:lead[3]],
					Kind:   kind,
					Export: export,
					Loc:    Location{Line: i + 1, Column: offset + lead[2]},
				})
			}
			offset += len(part) + 1
		}
	}
}

var identRe = regexp.MustCompile(`[A-Za-z_$][\w$]*`)

// collectUsages visits every identifier occurrence, skipping declaration
// sites and non-computed property-access keys, and back-fills each variable
// declaration with its usage list and the IsUnused flag. A name may be
// declared more than once (shadowing, redeclaration); every declaration of
// the name shares the usage occurrences and no declaration site counts as
// a usage of any of them.
func (e *Extractor) collectUsages(sanitized []string, res *Result) {
	decls := make(map[string][]*VariableDecl, len(res.Variables))
	for i := range res.Variables {
		v := &res.Variables[i]
		decls[v.Name] = append(decls[v.Name], v)
	}

	if len(decls) > 0 {
		for i, line := range sanitized {
			for _, span := range identRe.FindAllStringIndex(line, -1) {
				group, ok := decls[line[span[0]:span[1]]]
				if !ok {
					continue
				}
				if prevNonSpace(line, span[0]) == '.' {
					continue
				}
				if isDeclSite(group, i+1, span[0]) {
					continue
				}
				for _, decl := range group {
					decl.Usages = append(decl.Usages, Location{Line: i + 1, Column: span[0]})
				}
			}
		}
	}

	for i := range res.Variables {
		res.Variables[i].IsUnused = len(res.Variables[i].Usages) == 0
	}
}

// isDeclSite reports whether (line, col) is the declaration site of any
// binding in the group.
func isDeclSite(group []*VariableDecl, line, col int) bool {
	for _, decl := range group {
		if decl.Loc.Line == line && decl.Loc.Column == col {
			return true
		}
	}
	return false
}

// parseParams converts a raw parameter list into Param facts.
func parseParams(raw string) []Param {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []Param
	for _, part := range splitTopLevel(raw, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p := Param{}
		if strings.HasPrefix(part, "...") {
			p.Rest = true
			part = strings.TrimSpace(strings.TrimPrefix(part, "..."))
		}
		if idx := strings.Index(part, "="); idx >= 0 {
			p.HasDefault = true
			part = part[:idx]
		}
		if idx := strings.Index(part, ":"); idx >= 0 {
			part = part[:idx]
		}
		part = strings.TrimSpace(part)
		if strings.HasSuffix(part, "?") {
			p.Optional = true
			part = strings.TrimSuffix(part, "?")
		}
		if part == "" {
			continue
		}
		p.Name = part
		out = append(out, p)
	}
	return out
}

func varKindOf(keyword string) VarKind {
	switch keyword {
	case "let":
		return KindReassignable
	case "const":
		return KindNoReassign
	default:
		return KindLegacy
	}
}

func exportStatusOf(exported, isDefault bool, depth int) ExportStatus {
	switch {
	case isDefault:
		return ExportDefault
	case exported:
		return ExportNamed
	case depth > 0:
		return ExportNested
	default:
		return ExportTopLevel
	}
}

// group returns the text of capture group n, or "" when it did not match.
func group(s string, idx []int, n int) string {
	if 2*n+1 >= len(idx) || idx[2*n] < 0 {
		return ""
	}
	return s[idx[2*n]:idx[2*n+1]]
}

func indexOfNonSpace(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return i
		}
	}
	return 0
}

func prevNonSpace(s string, pos int) byte {
	for i := pos - 1; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

// topLevelIndex returns the index of the first sep outside any bracket
// nesting, or -1.
func topLevelIndex(s string, sep byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
