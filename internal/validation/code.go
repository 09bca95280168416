// Package validation provides the static safety gate applied to generated
// animation source before it is ever handed to the renderer.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/animation-agent/internal/types"
)

// Severity levels used in violations.
const (
	SeverityError = "error"
)

// Violation types.
const (
	TypeForbiddenImport = "forbidden_import"
	TypeForbiddenCall   = "forbidden_call"
	TypeMissingScene    = "missing_scene"
	TypeMissingMethod   = "missing_method"
)

var (
	importRe     = regexp.MustCompile(`^\s*import\s+([\w.]+)`)
	fromImportRe = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\b`)
	sceneClassRe = regexp.MustCompile(`class\s+\w+\s*\(\s*Scene\s*\)`)
	constructRe  = regexp.MustCompile(`def\s+construct\s*\(`)

	// Calls that would let generated code touch the host: evaluation,
	// filesystem and process access.
	forbiddenCallRe = regexp.MustCompile(`\b(eval|exec|open|system|__import__)\s*\(`)
)

// Validate scans generated source and returns every safety or structure
// violation found. An empty result means the source may be rendered.
//
// The checks mirror what the renderer requires: imports restricted to manim,
// no host-access calls, a Scene subclass and a construct method.
func Validate(source string) *types.Violations {
	var violations []types.Violation

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		code := stripComment(line)
		if strings.TrimSpace(code) == "" {
			continue
		}
		lineNo := i + 1

		if m := importRe.FindStringSubmatch(code); m != nil && rootModule(m[1]) != "manim" {
			violations = append(violations, types.Violation{
				Type:       TypeForbiddenImport,
				Severity:   SeverityError,
				Details:    fmt.Sprintf("Only manim imports are allowed, found: %s", m[1]),
				LineNumber: intPtr(lineNo),
				Snippet:    strings.TrimSpace(code),
			})
		}
		if m := fromImportRe.FindStringSubmatch(code); m != nil && rootModule(m[1]) != "manim" {
			violations = append(violations, types.Violation{
				Type:       TypeForbiddenImport,
				Severity:   SeverityError,
				Details:    fmt.Sprintf("Only imports from manim are allowed, found: %s", m[1]),
				LineNumber: intPtr(lineNo),
				Snippet:    strings.TrimSpace(code),
			})
		}
		if m := forbiddenCallRe.FindStringSubmatch(code); m != nil {
			violations = append(violations, types.Violation{
				Type:       TypeForbiddenCall,
				Severity:   SeverityError,
				Details:    fmt.Sprintf("Unauthorized function call: %s", m[1]),
				LineNumber: intPtr(lineNo),
				Snippet:    strings.TrimSpace(code),
			})
		}
	}

	if !sceneClassRe.MatchString(source) {
		violations = append(violations, types.Violation{
			Type:     TypeMissingScene,
			Severity: SeverityError,
			Details:  "no Scene class found in the code",
		})
	}
	if !constructRe.MatchString(source) {
		violations = append(violations, types.Violation{
			Type:     TypeMissingMethod,
			Severity: SeverityError,
			Details:  "no construct method found in the Scene class",
		})
	}

	return &types.Violations{Violations: violations}
}

// stripComment removes a trailing Python comment from a line. String literals
// containing '#' are rare in generated animation code and are accepted as a
// known limitation of the line-based scan.
func stripComment(line string) string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		return line[:idx]
	}
	return line
}

// rootModule returns the first segment of a dotted module path.
func rootModule(module string) string {
	if idx := strings.Index(module, "."); idx >= 0 {
		return module[:idx]
	}
	return module
}

func intPtr(i int) *int { return &i }
