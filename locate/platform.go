package locate

import (
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

const goosWindows = "windows"

// globalModulesDir returns directory where package manager keeps globally
// installed modules for the given prefix.
func globalModulesDir(goos, prefix string) string {
	if goos == goosWindows {
		return joinFor(goos, prefix, "node_modules")
	}
	return joinFor(goos, prefix, "lib", "node_modules")
}

// joinFor joins path elements using separator of the requested platform. For
// the running platform it is simply filepath.Join, other layouts are only
// needed when platform is forced.
func joinFor(goos, base string, elem ...string) string {
	if goos == runtime.GOOS {
		return filepath.Join(append([]string{base}, elem...)...)
	}
	if goos != goosWindows {
		return path.Join(append([]string{base}, elem...)...)
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(base, `\/`))
	for _, e := range elem {
		e = strings.Trim(strings.ReplaceAll(e, "/", `\`), `\`)
		if len(e) == 0 {
			continue
		}
		b.WriteByte('\\')
		b.WriteString(e)
	}
	return b.String()
}
