package domain

import "strings"

// Violation names one offending field and why it was rejected.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// ValidationError aggregates every violation found in a submitted configuration.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "; ")
}

// Has reports whether any violation targets path.
func (e *ValidationError) Has(path string) bool {
	if e == nil {
		return false
	}
	for _, v := range e.Violations {
		if v.Path == path {
			return true
		}
	}
	return false
}
