package common

import (
	"path"
	"strings"
)

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// SplitQualified splits "a.b.C" into ("a.b", "C"). Import paths keep their
// dots: "github.com/acme/inv.Item" splits at the last dot. Names without a
// qualifier report false.
func SplitQualified(name string) (qualifier, short string, ok bool) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return "", name, false
	}

	return name[:i], name[i+1:], true
}
