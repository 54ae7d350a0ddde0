// Package walk finds stylesheets in a directory tree.
package walk

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"apx/css"
)

// VisitFunc is called for every stylesheet found, path is usable for file
// access, rel is slash separated path relative to walk root.
type VisitFunc func(path, rel string) error

// Stylesheets visits supported stylesheets under root in natural order of
// their relative paths. Files matching any of ignore patterns are skipped,
// directories are pruned when pattern ends with "/**" and matches directory
// itself. Errors accessing single entries are logged and do not stop the walk,
// error returned by fn does.
func Stylesheets(ctx context.Context, root string, ignore []string, log *zap.Logger, fn VisitFunc) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("walk")

	m := matcher{patterns: ignore, log: log}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Warn("Skipping inaccessible entry", zap.String("path", path), zap.Error(err))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && m.prune(rel) {
				log.Debug("Ignoring directory", zap.String("path", rel))
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !css.Supported(d.Name()) {
			return nil
		}
		if m.ignored(rel) {
			log.Debug("Ignoring file", zap.String("path", rel))
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return err
	}

	sort.Sort(natural.StringSlice(files))
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(filepath.Join(root, filepath.FromSlash(rel)), rel); err != nil {
			return err
		}
	}
	return nil
}

// Ignored reports whether slash separated relative path matches any of the
// ignore patterns.
func Ignored(ignore []string, rel string, log *zap.Logger) bool {
	if log == nil {
		log = zap.NewNop()
	}
	return matcher{patterns: ignore, log: log}.ignored(rel)
}

type matcher struct {
	patterns []string
	log      *zap.Logger
}

func (m matcher) ignored(rel string) bool {
	for _, p := range m.patterns {
		if m.match(p, rel) {
			return true
		}
	}
	return false
}

func (m matcher) prune(rel string) bool {
	for _, p := range m.patterns {
		if dir, ok := strings.CutSuffix(p, "/**"); ok && m.match(dir, rel) {
			return true
		}
	}
	return false
}

func (m matcher) match(pattern, rel string) bool {
	ok, err := doublestar.Match(pattern, rel)
	if err != nil {
		m.log.Warn("Bad ignore pattern", zap.String("pattern", pattern), zap.Error(err))
		return false
	}
	return ok
}
