package directory

import "fmt"

// PatternError rejects admin invalidation patterns that reach outside the
// listing-key namespace.
type PatternError struct {
	Pattern   string
	Namespace string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %q outside cache namespace %q", e.Pattern, e.Namespace)
}

func errInvalidPattern(pattern, namespace string) error {
	return &PatternError{Pattern: pattern, Namespace: namespace}
}
