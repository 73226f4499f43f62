// Package path canonicalizes and inspects namespace paths.
//
// A canonical path is absolute and uses Separator only. Directory paths
// end with Separator, file paths never do. The root directory is "/".
package path

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nspcc-dev/emfs/pkg/util/logicerr"
)

const (
	// Separator is the canonical path separator.
	Separator = "/"
	// AltSeparator is accepted on input and replaced with Separator.
	AltSeparator = `\`
	// Root is the canonical path of the root directory.
	Root = Separator
)

var (
	// ErrInvalidPath is returned for paths that can't be canonicalized.
	ErrInvalidPath = logicerr.New("invalid path")
	// ErrNoParent is returned by Parent for the root directory.
	ErrNoParent = errors.New("root directory has no parent")
)

func normalize(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	p = strings.ReplaceAll(p, AltSeparator, Separator)
	if !strings.HasPrefix(p, Separator) {
		p = Separator + p
	}
	return p, nil
}

// Directory returns canonical directory path for p.
func Directory(p string) (string, error) {
	p, err := normalize(p)
	if err != nil {
		return "", err
	}

	if !strings.HasSuffix(p, Separator) {
		p += Separator
	}
	return p, nil
}

// File returns canonical file path for p. Paths ending with a separator
// can't denote a file.
func File(p string) (string, error) {
	p, err := normalize(p)
	if err != nil {
		return "", err
	}

	if strings.HasSuffix(p, Separator) {
		return "", fmt.Errorf("%w: file path %q ends with separator", ErrInvalidPath, p)
	}
	return p, nil
}

// IsDir checks whether canonical p denotes a directory.
func IsDir(p string) bool {
	return strings.HasSuffix(p, Separator)
}

// IsRoot checks whether canonical p is the root directory.
func IsRoot(p string) bool {
	return p == Root
}

// Parent returns canonical path of the directory containing canonical p.
func Parent(p string) (string, error) {
	if IsRoot(p) {
		return "", ErrNoParent
	}

	i := strings.LastIndex(strings.TrimSuffix(p, Separator), Separator)
	if i < 0 {
		return "", fmt.Errorf("%w: %q is not canonical", ErrInvalidPath, p)
	}
	return p[:i+1], nil
}

// Depth returns the number of separators in canonical p.
func Depth(p string) int {
	return strings.Count(p, Separator)
}

// Level returns the nesting level of canonical p: zero for the root, one
// for its immediate children and so on for both files and directories.
func Level(p string) int {
	if IsDir(p) {
		return Depth(p) - 1
	}
	return Depth(p)
}

// IsChild checks whether canonical p is an immediate child of canonical
// directory dir.
func IsChild(p, dir string) bool {
	return p != dir && strings.HasPrefix(p, dir) && Level(p) == Level(dir)+1
}

// Name returns the last segment of canonical p without separators. The
// root's name is Root.
func Name(p string) string {
	if IsRoot(p) {
		return Root
	}

	p = strings.TrimSuffix(p, Separator)
	return p[strings.LastIndex(p, Separator)+1:]
}

// Ext returns the extension of the file name including the dot, or an
// empty string.
func Ext(p string) string {
	name := Name(p)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

// Join appends relative rel to canonical directory dir. The result is not
// canonicalized.
func Join(dir, rel string) string {
	rel = strings.ReplaceAll(rel, AltSeparator, Separator)
	return dir + strings.TrimLeft(rel, Separator)
}

// Ancestors returns every directory from the root down to canonical
// directory dir inclusive.
func Ancestors(dir string) []string {
	res := []string{Root}
	for i := len(Root); i < len(dir); i++ {
		if dir[i] == Separator[0] {
			res = append(res, dir[:i+1])
		}
	}
	return res
}

// Rebase replaces oldPrefix of p with newPrefix. p is returned as is if it
// doesn't start with oldPrefix.
func Rebase(p, oldPrefix, newPrefix string) string {
	if !strings.HasPrefix(p, oldPrefix) {
		return p
	}
	return newPrefix + p[len(oldPrefix):]
}

// Pattern compiles wildcard pattern into a regular expression matched
// against full paths. '*' matches any run of characters within a segment,
// '?' matches exactly one character other than a separator, everything
// else is literal. The expression must match the whole last segment, so
// "*.txt" and "b.txt" match "/a/b.txt" while "b.txt" doesn't match
// "/a/ab.txt" and "b*" doesn't match "/bx/ab.txt".
func Pattern(glob string) (*regexp.Regexp, error) {
	if glob == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPath)
	}

	var sb strings.Builder
	sb.WriteString("(^|/)")
	for _, r := range glob {
		switch r {
		case '*':
			sb.WriteString("[^/]*")
		case '?':
			sb.WriteString("[^/]")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")

	return regexp.Compile(sb.String())
}
