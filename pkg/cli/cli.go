package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jlrickert/cli-toolkit/toolkit"
)

// Version may be overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// Run executes the command line against rt's streams. It returns the process
// exit code: 0 on success, 1 on error and 130 when interrupted.
func Run(ctx context.Context, rt *toolkit.Runtime, args []string) (int, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunWithDeps(ctx, &Deps{Runtime: rt}, args)
}

// RunWithDeps is Run with caller supplied dependencies.
func RunWithDeps(ctx context.Context, deps *Deps, args []string) (int, error) {
	if deps.Runtime == nil {
		return 1, fmt.Errorf("runtime is required")
	}
	stream := deps.Runtime.Stream()
	if deps.In == nil {
		deps.In = stream.In
	}
	if deps.Out == nil {
		deps.Out = stream.Out
	}
	if deps.Err == nil {
		deps.Err = stream.Err
	}

	cmd := NewRootCmd(deps)
	cmd.SetArgs(args)
	cmd.SetIn(deps.In)
	cmd.SetOut(deps.Out)
	cmd.SetErr(deps.Err)

	err := cmd.ExecuteContext(ctx)
	deps.Shutdown()
	if err != nil {
		if errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return 130, err
		}
		_, _ = fmt.Fprintf(deps.Err, "ekr: %s\n", renderUserError(err))
		return 1, err
	}
	return 0, nil
}
