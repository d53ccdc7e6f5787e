// Package naming converts engine names between the kebab-case form engines
// are registered under and the camelCase form older hosts still use.
package naming

import (
	"regexp"
	"strings"
)

var (
	decamelizeRe = regexp.MustCompile(`([a-z\d])([A-Z])`)
	dasherizeRe  = regexp.MustCompile(`[ _]`)
	camelizeRe   = regexp.MustCompile(`(-|_|\.|\s)+(.)?`)
	kebabRe      = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Decamelize inserts an underscore at each lower-to-upper boundary and
// lowercases the result: "superBlog" -> "super_blog".
func Decamelize(s string) string {
	return strings.ToLower(decamelizeRe.ReplaceAllString(s, "${1}_${2}"))
}

// Dasherize returns the kebab-case form: "superBlog" -> "super-blog".
// Dasherize is idempotent.
func Dasherize(s string) string {
	return dasherizeRe.ReplaceAllString(Decamelize(s), "-")
}

// Camelize returns the lowerCamelCase form: "super-blog" -> "superBlog".
func Camelize(s string) string {
	out := camelizeRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := camelizeRe.FindStringSubmatch(m)
		return strings.ToUpper(sub[2])
	})
	if out == "" {
		return out
	}
	return strings.ToLower(out[:1]) + out[1:]
}

// IsKebab reports whether s is a well-formed kebab-case name:
// lowercase alphanumeric segments joined by single dashes.
func IsKebab(s string) bool {
	return kebabRe.MatchString(s)
}
