package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"apx/locate"
	"apx/state"
)

// Resolve prints location of the requested module (configured one by
// default) or list of places where it would be looked for.
func Resolve(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("resolve")

	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many modules", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	ws, err := workspaceRoot(cmd.String("workspace"))
	if err != nil {
		return err
	}

	module, modulePath := cmd.Args().First(), cmd.String("module-path")
	if len(module) == 0 || module == env.Cfg.Resolver.ModuleName {
		module = env.Cfg.Resolver.ModuleName
		if len(modulePath) == 0 {
			modulePath = env.Cfg.Resolver.ModulePath
		}
	}

	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	if cmd.Bool("candidates") {
		return printCandidates(ctx, env, ws, w, log)
	}
	return printModule(ctx, env, moduleRequest(module, ws, modulePath), w, log)
}

func printCandidates(ctx context.Context, env *state.LocalEnv, ws string, w io.Writer, log *zap.Logger) error {
	roots, err := env.Locator.Candidates(ctx, ws)
	if err != nil {
		return err
	}
	log.Debug("Module candidates", zap.String("workspace", ws), zap.Strings("roots", roots))
	env.Rpt.StoreData("resolve/candidates.txt", []byte(strings.Join(roots, "\n")))

	for _, r := range roots {
		if _, err := fmt.Fprintln(w, r); err != nil {
			return err
		}
	}
	return nil
}

func printModule(ctx context.Context, env *state.LocalEnv, req locate.Request, w io.Writer, log *zap.Logger) error {
	path, err := env.Modules.Resolve(ctx, env.Locator, req, log)
	if err != nil {
		return err
	}
	log.Info("Module resolved", zap.String("module", req.Module), zap.String("path", path))
	env.Rpt.StoreData("resolve/"+strings.ReplaceAll(req.Module, "/", "_")+".txt", []byte(path))

	_, err = fmt.Fprintln(w, path)
	return err
}

// moduleRequest builds lookup request, non empty module path bypasses the
// lookup.
func moduleRequest(module, ws, modulePath string) locate.Request {
	req := locate.Request{Module: module, WorkspaceRoot: ws}
	if len(modulePath) > 0 {
		req.ShortCircuit = filepath.Clean(modulePath)
	}
	return req
}

// workspaceRoot returns absolute path of explicitly requested workspace or
// discovers one starting from current directory.
func workspaceRoot(requested string) (string, error) {
	if len(requested) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		return FindWorkspace(wd), nil
	}
	ws, err := filepath.Abs(requested)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(ws)
	if err != nil {
		return "", fmt.Errorf("workspace was not found (%s): %w", ws, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("workspace is not a directory (%s)", ws)
	}
	return ws, nil
}
