package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"slices"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"apx/common"
	"apx/config"
	"apx/locate"
	"apx/misc"
	"apx/prefix"
	"apx/process"
	"apx/state"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if data, err := config.Dump(env.Cfg); err == nil {
			name := "config/active.yaml"
			if len(configFile) > 0 {
				name = fmt.Sprintf("config/%s", filepath.Base(configFile))
			}
			env.Rpt.StoreData(name, data)
		}
	}
	env.Cfg.Logging.StdoutBusy = stdoutIsData(cmd.Args().Slice())
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 && env.Log != nil {
		env.Log.Info("Using defaults (no configuration file)")
	}

	rc := env.Cfg.Resolver
	env.Locator = locate.New(
		locate.WithPrefix(prefixSource(rc)),
		locate.WithLogger(env.Log),
	)
	env.Modules.SetPolicy(rc.Policy)
	env.Prefixer = prefix.NewNodeRunner(env.Cfg.Prefixer.Node, env.Cfg.Prefixer.Timeout, env.Log)
	return ctx, nil
}

// prefixSource selects how global package prefix is obtained.
func prefixSource(rc config.ResolverConfig) locate.PrefixFunc {
	if len(rc.GlobalPrefix) > 0 {
		return locate.StaticPrefix(rc.GlobalPrefix)
	}
	return locate.CommandPrefix(rc.PrefixCommand[0], rc.PrefixCommand[1:]...)
}

// stdoutIsData reports whether command will write its results to stdout, so
// console log must stay away from it.
func stdoutIsData(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "resolve":
		return true
	case "prefix":
		return slices.Contains(args[1:], "-")
	case "dumpconfig":
		for _, a := range args[1:] {
			if !strings.HasPrefix(a, "-") {
				return false
			}
		}
		return true
	}
	return false
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := config.PanicLogName(env.Cfg.Logging.FileLogger.Destination)
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Subcommands return regular errors, cli.Exit() is not used.
var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {

	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// do nothing special, error is reported either by exitErrHandler or on
	// exit directly to stderr.
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

func main() {

	// allow graceful shutdown on interrupt, node child processes are killed
	// through the context
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	workspaceFlag := &cli.StringFlag{Name: "workspace", Aliases: []string{"w"},
		Usage: "workspace `DIR` whose node_modules is searched first (default: closest directory with package.json)"}
	modulePathFlag := &cli.StringFlag{Name: "module-path", Usage: "use autoprefixer from `DIR` without looking for it"}

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "adds vendor prefixes to CSS, LESS and SCSS using autoprefixer",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "prefix",
				Usage:        "Adds vendor prefixes to stylesheet(s)",
				OnUsageError: usageErrorHandler,
				Action:       process.Run,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write results under `DIR` keeping relative layout instead of replacing sources"},
					&cli.StringFlag{Name: "syntax", Aliases: []string{"s"},
						Usage: "force stylesheet `SYNTAX` or editor language id (supported: " + strings.Join(common.SyntaxNames(), ", ") + ")"},
					&cli.StringSliceFlag{Name: "browsers", Aliases: []string{"b"}, Usage: "browserslist `QUERY`, replaces configured list (could be repeated)"},
					workspaceFlag,
					modulePathFlag,
					&cli.BoolFlag{Name: "check", Usage: "do not write anything, fail if any stylesheet needs prefixes"},
				},
				ArgsUsage: "SOURCE...",
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    stylesheet(s) to process:
        path to a file: "[path_to_file]file.css" (.css, .pcss, .postcss, .less, .scss)
        path to a directory: "[path_to_directory]directory" - recursively process all stylesheets under directory
        "-" - read stylesheet from STDIN and write result to STDOUT (CSS unless --syntax is specified)

	Stylesheets for which autoprefixer reports warnings are left unchanged.
	Files matching configured ignore patterns are skipped when walking directories.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "resolve",
				Usage:        "Shows where autoprefixer (or other node module) would be loaded from",
				OnUsageError: usageErrorHandler,
				Action:       process.Resolve,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "candidates", Usage: "list directories searched for modules in priority order"},
					workspaceFlag,
					modulePathFlag,
				},
				ArgsUsage: "[MODULE]",
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deffered functions after that
	defer func() {
		stop()
		if err != nil {
			// It may happen that log is either not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		which string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		which = "default"
		data, err = config.Prepare()
	} else {
		which = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputting configuration", zap.String("state", which), zap.String("file", fname))

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
