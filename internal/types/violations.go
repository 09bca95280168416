// Package types provides type definitions for structured data shared across
// the animation-agent pipeline.
package types

import "strings"

// Violation represents a single safety or structure check failure found in
// generated animation source.
type Violation struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Details    string `json:"details"`
	LineNumber *int   `json:"line_number,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
}

// Violations represents a collection of check failures.
type Violations struct {
	Violations []Violation `json:"violations"`
}

// Empty reports whether no violations were recorded.
func (v *Violations) Empty() bool {
	return v == nil || len(v.Violations) == 0
}

// Summary joins violation details into one human-readable line, suitable for
// a job's failure message.
func (v *Violations) Summary() string {
	if v.Empty() {
		return ""
	}
	details := make([]string, 0, len(v.Violations))
	for _, violation := range v.Violations {
		details = append(details, violation.Details)
	}
	return strings.Join(details, "; ")
}
