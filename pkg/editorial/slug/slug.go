// Package slug derives URL-safe identifiers from free text and disambiguates
// them against an existence check.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// \p{Z} adds Unicode spaces such as NBSP to the ASCII \s class
	reInvalid   = regexp.MustCompile(`[^a-z0-9\s\p{Z}-]`)
	reSeparator = regexp.MustCompile(`[\s\p{Z}-]+`)
)

// ErrExhausted is returned when every disambiguated candidate is taken
var ErrExhausted = errors.New("slug: no free candidate")

// Make lowercases text, drops everything outside [a-z0-9], whitespace and hyphen,
// collapses whitespace and hyphen runs into one hyphen and trims hyphens at both ends.
// The result may be empty.
func Make(text string) string {
	s := strings.ToLower(text)
	s = reInvalid.ReplaceAllString(s, "")
	s = reSeparator.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// MakeOr is Make with a fallback for text that has no usable characters
func MakeOr(text, fallback string) string {
	if s := Make(text); s != "" {
		return s
	}
	return fallback
}

// ExistsFunc reports whether a slug is already in use
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Resolver turns a candidate slug into one that is free at the time of the check.
// The check is advisory: callers still rely on a unique constraint in storage.
type Resolver struct {
	// Now supplies the timestamp used as first suffix. Defaults to time.Now.
	Now func() time.Time

	// MaxAttempts bounds the counter suffixes tried after the timestamp. Defaults to 10.
	MaxAttempts int
}

// Resolve returns candidate when it is free, otherwise candidate with a
// millisecond timestamp suffix, falling back to an extra counter when the
// timestamped slug is taken too. A failing exists check is returned as is and
// never treated as a free slug.
func (r Resolver) Resolve(ctx context.Context, candidate string, exists ExistsFunc) (string, error) {
	taken, err := exists(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("check slug %q: %w", candidate, err)
	}
	if !taken {
		return candidate, nil
	}

	stamped := fmt.Sprintf("%s-%d", candidate, r.now().UnixMilli())
	next := stamped
	for i := 0; i <= r.maxAttempts(); i++ {
		if i > 0 {
			next = fmt.Sprintf("%s-%d", stamped, i+1)
		}
		taken, err = exists(ctx, next)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", next, err)
		}
		if !taken {
			return next, nil
		}
	}
	return "", ErrExhausted
}

func (r Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Resolver) maxAttempts() int {
	if r.MaxAttempts > 0 {
		return r.MaxAttempts
	}
	return 10
}
