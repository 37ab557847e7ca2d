// Command processlog runs the process log pipeline over a local export.
//
//	processlog sheets FILE
//	processlog run FILE --layer SPF [--sheet S] [--long] [--variants] [--naming final] [--out DIR]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"
	_ "github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core/layers" // Register built-in layers
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/loader"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/logging"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

type globalOptions struct {
	logLevel  string
	logFormat string
	maxSize   int64
}

func newRootCmd() *cobra.Command {
	var g globalOptions

	root := &cobra.Command{
		Use:           "processlog",
		Short:         "Build case and event logs from incident exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), g.logLevel, g.logFormat))
		},
	}

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log format: text or json")
	root.PersistentFlags().Int64Var(&g.maxSize, "max-size", loader.DefaultMaxSize, "Maximum input size in bytes")

	root.AddCommand(newSheetsCmd(&g), newRunCmd(&g))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		os.Exit(exitOK)
	}

	fmt.Fprintln(os.Stderr, "error:", describe(err))
	var ee *exitError
	if errors.As(err, &ee) {
		os.Exit(ee.code)
	}
	os.Exit(exitFailure)
}

// describe pairs the technical error with its user message and code.
func describe(err error) string {
	if core.IsUserFacing(err) {
		return fmt.Sprintf("%v\n  %s", err, core.FormatUserError(err))
	}
	return err.Error()
}
