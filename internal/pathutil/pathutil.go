// Package pathutil normalizes directory paths and compares them segment by segment.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/cdir/internal/apperr"
)

const sep = string(filepath.Separator)

// Normalize returns the cleaned absolute form of p. Relative paths are
// resolved against base; an empty p or a relative p without base is rejected.
func Normalize(p, base string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", apperr.ErrValidation)
	}
	if !filepath.IsAbs(p) {
		if base == "" {
			return "", fmt.Errorf("%w: relative path %q", apperr.ErrValidation, p)
		}
		p = filepath.Join(base, p)
	}
	return filepath.Clean(p), nil
}

// Clean is Normalize without a base directory.
func Clean(p string) (string, error) {
	return Normalize(p, "")
}

// HasPrefix reports whether dir equals prefix or lies below it. The match
// never ends inside a path segment: "/home/abcd" is not under "/home/abc".
func HasPrefix(dir, prefix string) bool {
	if dir == prefix {
		return true
	}
	if prefix == sep {
		return strings.HasPrefix(dir, sep)
	}
	return strings.HasPrefix(dir, prefix+sep)
}

// Rel returns the part of dir after prefix, starting with the separator.
// It returns "" when dir equals prefix. Callers check HasPrefix first.
func Rel(dir, prefix string) string {
	if dir == prefix {
		return ""
	}
	if prefix == sep {
		return dir
	}
	return dir[len(prefix):]
}

// Parent returns the directory containing p, or p itself for the root.
func Parent(p string) string {
	return filepath.Dir(p)
}

// IsChild reports whether child is strictly below parent.
func IsChild(child, parent string) bool {
	return child != parent && HasPrefix(child, parent)
}

// IsSibling reports whether a and b are distinct entries of the same directory.
func IsSibling(a, b string) bool {
	return a != b && a != sep && b != sep && Parent(a) == Parent(b)
}
