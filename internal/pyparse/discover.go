package pyparse

import (
	"io/fs"
	"path/filepath"
	"strings"
)

var skipDirs = map[string]bool{
	"__pycache__":   true,
	"node_modules":  true,
	"site-packages": true,
	"venv":          true,
}

// SkipDir reports whether a directory named name holds no scannable
// sources: hidden directories, virtual environments and caches.
func SkipDir(name string) bool {
	return skipDirs[name] || strings.HasPrefix(name, ".")
}

// Discover returns the Python source files under root, in lexical order.
// Hidden directories, virtual environments and caches are skipped. A root
// naming a single file yields that file.
func Discover(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && SkipDir(d.Name()) {
				return filepath.SkipDir
			}

			return nil
		}

		if ext := filepath.Ext(path); ext == ".py" || ext == ".pyi" {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
