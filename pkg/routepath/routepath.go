// Package routepath normalizes the paths the runtime routes on.
package routepath

import (
	"errors"
	"strings"
)

// Path errors.
var (
	ErrAbsoluteURL = errors.New("routepath: absolute URL")
	ErrBackslash   = errors.New("routepath: path contains backslash")
	ErrNullByte    = errors.New("routepath: path contains null byte")
	ErrControl     = errors.New("routepath: control character in path")
	ErrBadEscape   = errors.New("routepath: invalid percent escape")
	ErrEscapesRoot = errors.New("routepath: path escapes root via ..")
)

// Clean returns the canonical form of p with any query string removed.
//
// A leading slash is added, repeated slashes collapse, "." segments are
// dropped and ".." segments resolved, and a trailing slash is removed
// except for the root. Backslashes, NUL bytes, control characters,
// malformed percent escapes, absolute URLs and ".." above the root are
// rejected.
func Clean(p string) (string, error) {
	p, _ = Split(p)
	if p == "" {
		return "/", nil
	}
	if strings.HasPrefix(p, "//") || strings.Contains(p, "://") {
		return "", ErrAbsoluteURL
	}
	if strings.ContainsRune(p, '\\') {
		return "", ErrBackslash
	}
	if strings.ContainsRune(p, 0) || strings.Contains(strings.ToUpper(p), "%00") {
		return "", ErrNullByte
	}
	for i := 0; i < len(p); i++ {
		if p[i] < 0x20 || p[i] == 0x7f {
			return "", ErrControl
		}
	}
	if err := checkEscapes(p); err != nil {
		return "", err
	}

	out := make([]string, 0, strings.Count(p, "/")+1)
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(out) == 0 {
				return "", ErrEscapesRoot
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}
	return "/" + strings.Join(out, "/"), nil
}

// MustClean is Clean for paths known at compile time. It panics on an
// invalid path.
func MustClean(p string) string {
	c, err := Clean(p)
	if err != nil {
		panic(err.Error() + ": " + p)
	}
	return c
}

// Split separates p into its path and query, without the "?".
func Split(p string) (path, query string) {
	path, query, _ = strings.Cut(p, "?")
	return path, query
}

func checkEscapes(p string) error {
	for i := 0; i < len(p); i++ {
		if p[i] != '%' {
			continue
		}
		if i+2 >= len(p) || !isHex(p[i+1]) || !isHex(p[i+2]) {
			return ErrBadEscape
		}
		i += 2
	}
	return nil
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
