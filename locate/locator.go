// Package locate finds installed node modules in a workspace dependency tree
// or in the package manager global install location.
package locate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
)

// ErrEmptyModule is returned when module name is not specified.
var ErrEmptyModule = errors.New("module name must not be empty")

// npm package name, optionally scoped. Uppercase letters are allowed since
// legacy packages (JSONStream, Base64) still carry them.
var moduleNameRe = regexp.MustCompile(`^(@[A-Za-z0-9~-][A-Za-z0-9._~-]*/)?[A-Za-z0-9~-][A-Za-z0-9._~-]*$`)

// PrefixFunc returns raw output of package manager "get global prefix" query.
type PrefixFunc func(ctx context.Context) (string, error)

// ExistsFunc reports whether path exists. It must not fail: any problem
// accessing path means it does not exist.
type ExistsFunc func(path string) bool

// PrefixError is returned when global prefix could not be determined. It is
// different from "module not found" which is not an error at all.
type PrefixError struct {
	Err error
}

func (e *PrefixError) Error() string {
	return fmt.Sprintf("unable to get global package prefix: %v", e.Err)
}

func (e *PrefixError) Unwrap() error {
	return e.Err
}

// Request describes single module lookup.
type Request struct {
	// Module is package name, for example "autoprefixer" or "@scope/name".
	Module string
	// WorkspaceRoot may be empty which means there is no workspace.
	WorkspaceRoot string
	// ShortCircuit if not empty is returned as is, nothing is probed.
	ShortCircuit string
}

// Locator is stateless, it could be shared and used concurrently.
type Locator struct {
	prefix PrefixFunc
	exists ExistsFunc
	goos   string
	log    *zap.Logger
}

type Option func(*Locator)

// WithPrefix replaces global prefix query.
func WithPrefix(fn PrefixFunc) Option {
	return func(l *Locator) {
		l.prefix = fn
	}
}

// WithExists replaces filesystem existence check.
func WithExists(fn ExistsFunc) Option {
	return func(l *Locator) {
		l.exists = fn
	}
}

// WithPlatform selects path layout using GOOS name ("windows", "linux", ...).
func WithPlatform(goos string) Option {
	return func(l *Locator) {
		l.goos = goos
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Locator) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates Locator. By default it asks npm for global prefix, checks
// existence with os.Stat and uses layout of the running platform.
func New(options ...Option) *Locator {
	l := &Locator{
		prefix: CommandPrefix("npm", "config", "get", "prefix"),
		exists: statExists,
		goos:   runtime.GOOS,
		log:    zap.NewNop(),
	}
	for _, o := range options {
		o(l)
	}
	l.log = l.log.Named("locate")
	return l
}

// ValidModuleName checks that name could be used as npm package name.
func ValidModuleName(name string) error {
	if len(name) == 0 {
		return ErrEmptyModule
	}
	if !moduleNameRe.MatchString(name) {
		return fmt.Errorf("invalid module name %q", name)
	}
	return nil
}

// Candidates returns ordered list of directories which may contain installed
// modules. Workspace node_modules always goes first.
func (l *Locator) Candidates(ctx context.Context, workspaceRoot string) ([]string, error) {
	var roots []string
	if len(workspaceRoot) > 0 {
		roots = append(roots, l.join(workspaceRoot, "node_modules"))
	}

	out, err := l.prefix(ctx)
	if err != nil {
		return nil, &PrefixError{Err: err}
	}
	if prefix := trimPrefix(out); len(prefix) > 0 {
		roots = append(roots, globalModulesDir(l.goos, prefix))
	}
	return roots, nil
}

// Resolve returns path to the module from the first candidate root (in
// priority order) which has it. When module could not be found anywhere found
// is false and error is nil. Error is only returned for invalid request or
// when global prefix could not be obtained.
func (l *Locator) Resolve(ctx context.Context, req Request) (path string, found bool, err error) {
	if err := ValidModuleName(req.Module); err != nil {
		return "", false, err
	}
	if len(req.ShortCircuit) > 0 {
		l.log.Debug("Using known module location", zap.String("module", req.Module), zap.String("path", req.ShortCircuit))
		return req.ShortCircuit, true, nil
	}

	roots, err := l.Candidates(ctx, req.WorkspaceRoot)
	if err != nil {
		return "", false, err
	}

	paths := make([]string, len(roots))
	for i, root := range roots {
		paths[i] = l.join(root, req.Module)
	}

	// NOTE: checks run concurrently, but selection below is done in
	// candidate order after all of them are finished. Returning on the first
	// completed check would allow lower priority root to win.
	results := make([]bool, len(paths))
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = l.exists(p)
		}()
	}
	wg.Wait()

	for i, ok := range results {
		if ok {
			l.log.Debug("Module found", zap.String("module", req.Module), zap.String("path", paths[i]), zap.Int("candidate", i))
			return paths[i], true, nil
		}
	}
	l.log.Debug("Module not found", zap.String("module", req.Module), zap.Strings("candidates", roots))
	return "", false, nil
}

func (l *Locator) join(base string, elem ...string) string {
	return joinFor(l.goos, base, elem...)
}

// trimPrefix removes trailing white space and line breaks from raw prefix
// query output.
func trimPrefix(out string) string {
	return strings.TrimRightFunc(out, unicode.IsSpace)
}

func statExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
