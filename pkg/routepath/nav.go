package routepath

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrNotAbsolute   = errors.New("routepath: target is not an absolute path")
	ErrForeignTarget = errors.New("routepath: target names another origin")
	ErrIllegalByte   = errors.New("routepath: target contains an illegal byte")
	ErrEscapesRoot   = errors.New("routepath: target escapes the root")
	ErrInvalidEscape = errors.New("routepath: invalid percent escape")
)

// ValidateTarget checks a navigation target received from outside the
// process and returns it in clean form. Only same-origin absolute paths
// are accepted. Dot segments and empty segments are removed from the
// path; query and fragment are kept as sent.
func ValidateTarget(target string) (string, error) {
	if !strings.HasPrefix(target, "/") {
		return "", fmt.Errorf("%w: %q", ErrNotAbsolute, target)
	}
	if strings.HasPrefix(target, "//") {
		return "", fmt.Errorf("%w: %q", ErrForeignTarget, target)
	}
	for i := 0; i < len(target); i++ {
		if c := target[i]; c == '\\' || c < 0x20 || c == 0x7f {
			return "", fmt.Errorf("%w at offset %d", ErrIllegalByte, i)
		}
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEscape, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return "", fmt.Errorf("%w: %q", ErrForeignTarget, target)
	}

	path, err := cleanPath(u.EscapedPath())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(path)
	if u.RawQuery != "" || u.ForceQuery {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.EscapedFragment())
	}
	return b.String(), nil
}

// cleanPath resolves "." and ".." in an escaped path. Encoded dots count
// as dots.
func cleanPath(escaped string) (string, error) {
	var out []string
	for _, seg := range Split(escaped) {
		v, err := DecodeSegment(seg)
		if err != nil {
			return "", err
		}
		switch v {
		case ".":
		case "..":
			if len(out) == 0 {
				return "", fmt.Errorf("%w: %q", ErrEscapesRoot, escaped)
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}
	return "/" + strings.Join(out, "/"), nil
}
