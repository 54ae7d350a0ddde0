package locate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandPrefix returns PrefixFunc which runs external command (normally
// "npm config get prefix") and returns its standard output.
func CommandPrefix(name string, args ...string) PrefixFunc {
	return func(ctx context.Context) (string, error) {
		cmd := exec.CommandContext(ctx, name, args...)

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		out, err := cmd.Output()
		if err != nil {
			var ee *exec.ExitError
			if errors.As(err, &ee) && stderr.Len() > 0 {
				return "", fmt.Errorf("%s: %w: %s", cmd.String(), err, strings.TrimSpace(stderr.String()))
			}
			return "", fmt.Errorf("%s: %w", cmd.String(), err)
		}
		return string(out), nil
	}
}

// StaticPrefix returns PrefixFunc which always reports the same prefix, no
// process is started.
func StaticPrefix(prefix string) PrefixFunc {
	return func(context.Context) (string, error) {
		return prefix, nil
	}
}
