package routepath

import (
	"fmt"
	"net/url"
	"strings"
)

// Segment is one "/"-separated piece of a URL path.
type Segment struct {
	// Raw is the segment as it appears in the URL, still escaped.
	Raw string

	// Value is the decoded segment. An encoded slash decodes to "/".
	Value string
}

// Split returns the non-empty segments of path, undecoded.
// Leading, trailing and repeated slashes produce no segments.
func Split(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SplitSegments splits path like Split and decodes every segment. It
// fails on the first segment holding a malformed escape.
func SplitSegments(path string) ([]Segment, error) {
	raw := Split(path)
	if raw == nil {
		return nil, nil
	}
	segs := make([]Segment, len(raw))
	for i, r := range raw {
		v, err := DecodeSegment(r)
		if err != nil {
			return nil, err
		}
		segs[i] = Segment{Raw: r, Value: v}
	}
	return segs, nil
}

// DecodeSegment percent-decodes a single path segment.
func DecodeSegment(raw string) (string, error) {
	v, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w in %q", ErrInvalidEscape, raw)
	}
	return v, nil
}

// Normalize removes a single trailing slash.
func Normalize(path string) string {
	return strings.TrimSuffix(path, "/")
}

// NormalizeAbsolute makes path absolute and removes a trailing slash.
// The root path normalizes to "".
func NormalizeAbsolute(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Normalize(path)
}

// Join appends segment to the URL path of a parent fragment.
// An empty parent denotes the root.
func Join(parent, segment string) string {
	if segment == "" {
		if parent == "" {
			return "/"
		}
		return parent
	}
	if parent == "" {
		return NormalizeAbsolute(segment)
	}
	return Normalize(parent) + "/" + segment
}

// StripBase removes base from the front of path. It reports false when
// path does not lie under base. The remainder is returned as an absolute
// path without trailing slash.
func StripBase(path, base string) (string, bool) {
	if base == "" {
		return path, true
	}
	if !strings.HasPrefix(path, base) {
		return "", false
	}
	rest := path[len(base):]
	if rest != "" && rest[0] != '/' {
		return "", false
	}
	return NormalizeAbsolute(rest), true
}

// WithBase prefixes absolute paths with base. Relative paths and full
// URLs are returned unchanged.
func WithBase(path, base string) string {
	if base != "" && strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") {
		return base + path
	}
	return path
}
