// Package resource contains code common to all resources (departments, supply
// chains, strategic actions, updates, etc)
package resource

import (
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/supplychain-resilience/scr/internal"
)

// A regular expression used to validate slugs.
var validSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateName checks a human readable name is present.
func ValidateName(name *string) error {
	if name == nil || strings.TrimSpace(*name) == "" {
		return internal.ErrRequiredName
	}
	if Slugify(*name) == "" {
		return internal.ErrInvalidName
	}
	return nil
}

// Slugify derives a URL path segment from a name, e.g. "Vaccines & Antidotes"
// becomes "vaccines-antidotes".
func Slugify(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strcase.ToKebab(strings.Join(strings.Fields(b.String()), " "))
}

// ValidSlug reports whether s is a well-formed slug.
func ValidSlug(s string) bool {
	return validSlug.MatchString(s)
}
