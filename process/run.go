// Package process implements program commands: adding vendor prefixes to
// stylesheets and locating autoprefixer installation.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"apx/archive"
	"apx/common"
	"apx/css"
	"apx/locate"
	"apx/prefix"
	"apx/state"
	"apx/walk"
)

// stdinSource is command line argument requesting stylesheet from STDIN.
const stdinSource = "-"

// WarningsError is returned when autoprefixer reported problems, in which
// case result is not written.
type WarningsError struct {
	Count int
}

func (e *WarningsError) Error() string {
	return fmt.Sprintf("autoprefixer reported %d warning(s), stylesheet left unchanged", e.Count)
}

// CheckError is returned in check mode when some stylesheets would be
// changed.
type CheckError struct {
	Changed int
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%d stylesheet(s) need vendor prefixes", e.Changed)
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("prefix")

	sources := cmd.Args().Slice()
	if len(sources) == 0 {
		return errors.New("no input source has been specified")
	}

	p := &processor{
		env:        env,
		log:        log,
		stdin:      cmd.Root().Reader,
		stdout:     cmd.Root().Writer,
		browsers:   env.Cfg.Prefixer.Browsers,
		modulePath: env.Cfg.Resolver.ModulePath,
	}

	if id := cmd.String("syntax"); len(id) > 0 {
		syntax, err := css.SyntaxFromLanguage(id)
		if err != nil {
			return err
		}
		p.syntax = &syntax
	}
	if browsers := cmd.StringSlice("browsers"); len(browsers) > 0 {
		p.browsers = browsers
	}
	if mp := cmd.String("module-path"); len(mp) > 0 {
		p.modulePath = mp
	}
	if env.Workspace, err = workspaceRoot(cmd.String("workspace")); err != nil {
		return err
	}
	if out := cmd.String("out"); len(out) > 0 {
		if env.Out, err = filepath.Abs(out); err != nil {
			return err
		}
	}
	env.Check = cmd.Bool("check")

	log.Info("Processing starting",
		zap.Strings("sources", sources), zap.String("workspace", env.Workspace), zap.String("destination", env.Out), zap.Bool("check", env.Check))
	defer func(start time.Time) {
		log.Info("Processing completed",
			zap.Duration("elapsed", time.Since(start)), zap.Int("processed", p.processed), zap.Int("changed", p.changed))
	}(time.Now())

	return p.run(ctx, sources)
}

// processor handles the core logic independently of CLI framework.
type processor struct {
	env    *state.LocalEnv
	log    *zap.Logger
	stdin  io.Reader
	stdout io.Writer

	// forced dialect, detected by file extension otherwise
	syntax     *common.Syntax
	browsers   []string
	modulePath string

	processed, changed int
}

func (p *processor) run(ctx context.Context, sources []string) (err error) {
	stdinSeen := false
	for _, src := range sources {
		if e := ctx.Err(); e != nil {
			return multierr.Append(err, e)
		}

		if src == stdinSource {
			if stdinSeen {
				p.log.Warn("Standard input could be processed only once, ignoring")
				continue
			}
			stdinSeen = true
			err = multierr.Append(err, p.processStream(ctx))
			continue
		}
		if e := p.processPath(ctx, src); e != nil {
			err = multierr.Append(err, e)
			if fatal(e) {
				break
			}
		}
	}
	if err == nil && p.env.Check && p.changed > 0 {
		return &CheckError{Changed: p.changed}
	}
	return err
}

// fatal reports errors which would repeat for every stylesheet.
func fatal(err error) bool {
	var (
		nie *state.NotInstalledError
		pe  *locate.PrefixError
	)
	return errors.As(err, &nie) || errors.As(err, &pe) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (p *processor) syntaxFor(name string) (common.Syntax, bool) {
	if p.syntax != nil {
		return *p.syntax, true
	}
	return css.SyntaxFromPath(name)
}

func (p *processor) processPath(ctx context.Context, src string) error {
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	if fi.IsDir() {
		return p.processDir(ctx, src)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
	isArchive, err := isArchiveFile(src)
	if err != nil {
		return fmt.Errorf("unable to check archive type: %w", err)
	}
	if isArchive {
		return p.processArchive(ctx, src)
	}
	syntax, ok := p.syntaxFor(src)
	if !ok {
		return fmt.Errorf("input was not recognized as stylesheet (%s), supported are LESS, SCSS, PostCSS and CSS", src)
	}
	return p.processFile(ctx, src, filepath.Base(src), syntax)
}

// processDir walks directory tree finding stylesheets and processes them.
func (p *processor) processDir(ctx context.Context, dir string) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			p.log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	werr := walk.Stylesheets(ctx, dir, p.env.Cfg.Prefixer.Ignore, p.log, func(path, rel string) error {
		count++
		syntax, _ := p.syntaxFor(path)
		if e := p.processFile(ctx, path, rel, syntax); e != nil {
			err = multierr.Append(err, e)
			if fatal(e) {
				return e
			}
		}
		return nil
	})
	if werr != nil && !errors.Is(err, werr) {
		err = multierr.Append(err, werr)
	}
	return err
}

// processFile handles single stylesheet. "rel" is path relative to processed
// directory or just base file name, it is used to place result under
// destination directory.
func (p *processor) processFile(ctx context.Context, path, rel string, syntax common.Syntax) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		p.log.Error("Unable to read stylesheet", zap.String("file", path), zap.Error(err))
		return err
	}
	if err := p.env.Rpt.StoreCopy(filepath.Join("input", rel), path); err != nil {
		p.log.Debug("Unable to store stylesheet in report", zap.String("file", path), zap.Error(err))
	}
	return p.processData(ctx, path, rel, data, syntax, fi.Mode().Perm())
}

// processArchive processes stylesheets packed into zip archive. Archive itself
// is never modified so results could only go to destination directory.
func (p *processor) processArchive(ctx context.Context, arc string) (err error) {
	if len(p.env.Out) == 0 && !p.env.Check {
		return fmt.Errorf("stylesheets in archive (%s) could only be processed with destination directory or in check mode", arc)
	}

	count := 0
	defer func() {
		if err == nil && count == 0 {
			p.log.Debug("Nothing to process", zap.String("archive", arc))
		}
	}()

	accept := func(name string) bool {
		return css.Supported(name) && !walk.Ignored(p.env.Cfg.Prefixer.Ignore, name, p.log)
	}
	werr := archive.Walk(arc, accept, func(name string, data []byte) error {
		if e := ctx.Err(); e != nil {
			return e
		}
		count++
		syntax, _ := p.syntaxFor(name)
		if e := p.processData(ctx, arc+":"+name, name, data, syntax, 0644); e != nil {
			err = multierr.Append(err, e)
			if fatal(e) {
				return e
			}
		}
		return nil
	})
	if werr != nil && !errors.Is(err, werr) {
		err = multierr.Append(err, fmt.Errorf("unable to process archive (%s): %w", arc, werr))
	}
	return err
}

// processData runs autoprefixer over stylesheet content coming from "origin"
// and writes result either in place (origin is a file then) or under
// destination directory using "rel".
func (p *processor) processData(ctx context.Context, origin, rel string, data []byte, syntax common.Syntax, perm os.FileMode) error {
	log := p.log.With(zap.String("file", origin))

	out, changed, err := p.transform(ctx, data, syntax, log)
	if err != nil {
		log.Error("Unable to process stylesheet", zap.Error(err))
		return fmt.Errorf("%s: %w", origin, err)
	}

	if p.env.Check {
		if changed {
			log.Info("Stylesheet needs vendor prefixes")
		}
		return nil
	}

	dst := origin
	if len(p.env.Out) > 0 {
		dst = filepath.Join(p.env.Out, filepath.FromSlash(rel))
	} else if !changed {
		log.Debug("Nothing to change")
		return nil
	}

	if err := writeFile(dst, out, perm); err != nil {
		log.Error("Unable to write stylesheet", zap.String("to", dst), zap.Error(err))
		return fmt.Errorf("%s: %w", origin, err)
	}
	log.Info("Stylesheet written", zap.String("to", dst), zap.Bool("changed", changed))

	if err := p.env.Rpt.StoreCopy(filepath.Join("output", rel), dst); err != nil {
		log.Debug("Unable to store result in report", zap.Error(err))
	}
	return nil
}

// processStream reads stylesheet from standard input and writes result to
// standard output.
func (p *processor) processStream(ctx context.Context) error {
	log := p.log.With(zap.String("file", "STDIN"))

	syntax := common.SyntaxCss
	if p.syntax != nil {
		syntax = *p.syntax
	}

	in := p.stdin
	if in == nil {
		in = os.Stdin
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("unable to read standard input: %w", err)
	}
	p.env.Rpt.StoreData("input/stdin", data)

	out, changed, err := p.transform(ctx, data, syntax, log)
	if err != nil {
		log.Error("Unable to process stylesheet", zap.Error(err))
		return fmt.Errorf("STDIN: %w", err)
	}
	if p.env.Check {
		if changed {
			log.Info("Stylesheet needs vendor prefixes")
		}
		return nil
	}

	w := p.stdout
	if w == nil {
		w = os.Stdout
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("unable to write standard output: %w", err)
	}
	p.env.Rpt.StoreData("output/stdout", out)
	return nil
}

// transform runs autoprefixer over stylesheet. Result is not returned when
// autoprefixer reported warnings.
func (p *processor) transform(ctx context.Context, data []byte, syntax common.Syntax, log *zap.Logger) ([]byte, bool, error) {
	src, err := decodeSource(data)
	if err != nil {
		return nil, false, err
	}

	module, err := p.module(ctx)
	if err != nil {
		return nil, false, err
	}

	res, err := p.env.Prefixer.Run(ctx, prefix.Request{
		CSS:      src.text,
		Syntax:   syntax,
		Browsers: p.browsers,
		Module:   module,
		WorkDir:  p.env.Workspace,
	})
	if err != nil {
		return nil, false, err
	}
	p.processed++

	if res.HasWarnings() {
		for _, w := range res.Warnings {
			log.Warn("Autoprefixer warning", zap.String("message", prefix.FormatWarning(w)))
		}
		return nil, false, &WarningsError{Count: len(res.Warnings)}
	}

	changed := res.CSS != src.text
	if changed {
		p.changed++
	}
	added := css.CountPrefixes([]byte(res.CSS)).Sub(css.CountPrefixes([]byte(src.text)))
	log.Debug("Stylesheet processed",
		zap.Stringer("syntax", syntax), zap.Bool("changed", changed), zap.Int("prefixes", added.Prefixed), zap.Any("vendors", added.ByVendor))

	out, err := src.encode(res.CSS)
	if err != nil {
		return nil, false, err
	}
	return out, changed, nil
}

// module returns location of autoprefixer or its bare name when external
// lookup is disabled and node should find it.
func (p *processor) module(ctx context.Context) (string, error) {
	cfg := &p.env.Cfg.Resolver
	if !cfg.FindExternal {
		return cfg.ModuleName, nil
	}
	return p.env.Modules.Resolve(ctx, p.env.Locator, moduleRequest(cfg.ModuleName, p.env.Workspace, p.modulePath), p.log)
}

// writeFile replaces file content through temporary file in the same
// directory.
func writeFile(name string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Chmod(perm); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), name)
}
