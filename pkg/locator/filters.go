package locator

import (
	"regexp"
	"strings"
)

// Component frameworks mint run-specific ids and class names; a locator built
// on one would be dead on the next page load. These filters decide whether an
// id or class is stable enough to key a selector on.

var (
	numericIDRe = regexp.MustCompile(`^\d+$`)
	digitRunRe  = regexp.MustCompile(`\d[-_:.]?\d[-_:.]?\d`)
	hexLikeRe   = regexp.MustCompile(`^[0-9a-fA-F]{8,}$`)
	emberIDRe   = regexp.MustCompile(`^ember\d`)

	longDigitRunRe = regexp.MustCompile(`\d{5,}`)
	hashSuffixRe   = regexp.MustCompile(`[-_]([0-9a-fA-F]{4,10})$`)
)

// Known generated-id prefixes (React useId, Angular, Ember).
var generatedIDPrefixes = []string{"r:", ":r", "ng-", "react-"}

// StableID reports whether an id looks hand-authored rather than generated.
// Rejected: purely numeric ids, ids with 3+ consecutive digits (separators
// allowed), UUID/hash-like hex runs of 8+, and known generated prefixes.
func StableID(id string) bool {
	if id == "" {
		return false
	}
	if numericIDRe.MatchString(id) {
		return false
	}
	if digitRunRe.MatchString(id) {
		return false
	}
	if hexLikeRe.MatchString(id) {
		return false
	}
	for _, p := range generatedIDPrefixes {
		if strings.HasPrefix(id, p) {
			return false
		}
	}
	if emberIDRe.MatchString(id) {
		return false
	}
	return true
}

// CSS-in-JS class prefixes that embed build-time hashes.
var generatedClassPrefixes = []string{"css-", "sc-", "jss-", "emotion-", "styled-"}

// StableClass reports whether a class name is safe to use in a structural
// path. Hashed suffixes, CSS-in-JS prefixes, and long digit runs mark a class
// as generated.
func StableClass(class string) bool {
	if class == "" {
		return false
	}
	lower := strings.ToLower(class)
	for _, p := range generatedClassPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	if longDigitRunRe.MatchString(class) {
		return false
	}
	if m := hashSuffixRe.FindStringSubmatch(class); m != nil {
		if strings.ContainsAny(m[1], "0123456789") {
			return false
		}
	}
	return true
}
