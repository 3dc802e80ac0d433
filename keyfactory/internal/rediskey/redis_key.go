// Package rediskey validates and assembles the colon separated keys stored in Redis.
package rediskey

import (
	"fmt"
	"regexp"
	"strings"
)

type GlobWildcard string

const (
	WildcardAnyChar   GlobWildcard = "?" // Matches exactly one character.
	WildcardAnyString GlobWildcard = "*" // Matches zero or more characters.

	Delimiter    = ":"
	keyMaxLength = 1024
)

var (
	keyRegex      = regexp.MustCompile(`^[a-zA-Z0-9:_\-\*\?\[\]\(\),\.]+$`)
	fragmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
)

type InvalidKeyError string

func (e InvalidKeyError) Error() string { return "invalid redis key: " + string(e) }

// ValidateFragment checks a single key segment. Segments never contain the
// delimiter or glob characters, so joined keys can be split back unambiguously.
func ValidateFragment(fragment string) error {
	if fragment == "" {
		return InvalidKeyError("key fragment must not be empty")
	}
	if len(fragment) > keyMaxLength {
		return InvalidKeyError(fmt.Sprintf("key fragment %q exceeds %d characters", fragment, keyMaxLength))
	}
	if !fragmentRegex.MatchString(fragment) {
		return InvalidKeyError(fmt.Sprintf("key fragment %q contains invalid characters", fragment))
	}
	return nil
}

// Validate checks a complete key or match pattern.
func Validate(key string) error {
	if key == "" {
		return InvalidKeyError("key must not be empty")
	}
	if len(key) > keyMaxLength {
		return InvalidKeyError(fmt.Sprintf("key %q exceeds %d characters", key, keyMaxLength))
	}
	if !keyRegex.MatchString(key) {
		return InvalidKeyError(fmt.Sprintf("key %q contains invalid characters", key))
	}
	if strings.HasPrefix(key, Delimiter) || strings.HasSuffix(key, Delimiter) {
		return InvalidKeyError(fmt.Sprintf("key %q must not start or end with %q", key, Delimiter))
	}
	return nil
}

// Join joins key segments with the delimiter, skipping empty segments.
//
// Example:
//
//	Join("__app__", "", "user", "42") // "__app__:user:42"
func Join(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(Delimiter)
		}
		b.WriteString(s)
	}
	return b.String()
}

// Split splits key into at most n segments. See strings.SplitN.
func Split(key string, n int) []string {
	return strings.SplitN(key, Delimiter, n)
}

// MatchPattern appends a glob wildcard segment to base.
// An empty base yields the bare wildcard.
//
// Example:
//
//	MatchPattern("user", WildcardAnyString) // "user:*"
func MatchPattern(base string, wildcard GlobWildcard) string {
	return Join(base, string(wildcard))
}
