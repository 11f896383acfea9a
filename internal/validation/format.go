// Package validation formats messages about values outside a closed set.
package validation

import (
	"fmt"
	"strings"
)

// FormatChoices lists values the way a user types them: lower case, with
// underscores spelled as dashes.
func FormatChoices[T ~string](values []T) string {
	formatted := make([]string, 0, len(values))
	for _, value := range values {
		formatted = append(formatted, strings.ReplaceAll(strings.ToLower(string(value)), "_", "-"))
	}
	return strings.Join(formatted, ", ")
}

// InvalidValueError wraps base with the rejected input and the accepted
// choices.
func InvalidValueError[T ~string](base error, value string, choices []T) error {
	return fmt.Errorf("%w %q: must be one of %s", base, value, FormatChoices(choices))
}
