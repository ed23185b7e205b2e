package driver

import (
	"context"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// CommandRunner abstracts external tool invocation so platform drivers can
// be tested against canned output instead of a live system.
type CommandRunner interface {
	// Run executes name with args, bounded by timeout when timeout > 0,
	// and returns the combined stdout+stderr. A non-nil error covers
	// non-zero exits, missing binaries, and timeouts alike; call sites
	// convert it to empty results or a failed OpResult.
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error)

	// Available reports whether the named tool can be found on PATH.
	Available(tool string) bool
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// NewExecRunner returns the production CommandRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()

	evt := log.Debug().
		Str("component", "runner").
		Str("tool", name).
		Strs("args", args).
		Dur("duration", time.Since(start))
	if err != nil {
		evt.Err(err)
	}
	evt.Msg("External tool finished")

	return string(out), err
}

func (r *ExecRunner) Available(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}
