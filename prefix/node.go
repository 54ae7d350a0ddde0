package prefix

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:embed runner.js
var bridgeScript string

// time given to node to exit after context is done before pipes are closed
const waitDelay = 2 * time.Second

type bridgeRequest struct {
	Request
	Parser string `json:"parser,omitempty"`
}

// NodeRunner runs autoprefixer in node child process. Request is sent as JSON
// on stdin, result is read as JSON from stdout.
type NodeRunner struct {
	node    string
	timeout time.Duration
	log     *zap.Logger
}

// NewNodeRunner creates runner using node executable. Zero timeout means no
// time limit for single stylesheet.
func NewNodeRunner(node string, timeout time.Duration, log *zap.Logger) *NodeRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &NodeRunner{
		node:    node,
		timeout: timeout,
		log:     log.Named("prefix"),
	}
}

func (n *NodeRunner) Run(ctx context.Context, req Request) (*Result, error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(bridgeRequest{Request: req, Parser: req.Syntax.ParserModule()})
	if err != nil {
		return nil, fmt.Errorf("unable to encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, n.node, "-e", bridgeScript)
	cmd.Dir = req.WorkDir
	cmd.WaitDelay = waitDelay
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("autoprefixer did not finish in %s: %w", n.timeout, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); len(msg) > 0 {
			return nil, fmt.Errorf("%s failed: %w: %s", n.node, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", n.node, err)
	}

	res := &Result{}
	if err := json.Unmarshal(stdout.Bytes(), res); err != nil {
		return nil, fmt.Errorf("unable to decode autoprefixer output: %w", err)
	}
	n.log.Debug("Stylesheet processed",
		zap.Stringer("syntax", req.Syntax),
		zap.String("module", req.Module),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}
