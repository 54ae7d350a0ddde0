package process

import (
	"os"
	"path/filepath"
)

const manifestName = "package.json"

// FindWorkspace returns closest directory starting with dir and going up
// which has package.json in it. Empty string means there is no workspace.
func FindWorkspace(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		if fi, err := os.Stat(filepath.Join(dir, manifestName)); err == nil && fi.Mode().IsRegular() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
