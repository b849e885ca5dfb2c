// Package cmdutil holds the cobra plumbing shared by the localsync and unisync
// binaries: settings flag handling, per-run setup and process exit codes.
package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/openmined/unisync/internal/logging"
	"github.com/openmined/unisync/internal/settings"
	"github.com/openmined/unisync/internal/unison"
	"github.com/spf13/cobra"
)

const settingsFlag = "settings"

// ErrInterrupted is returned by Prepare when the operator cancels the run
// before it starts. Execute maps it to a clean exit.
var ErrInterrupted = errors.New("run interrupted")

// AddSettingsFlag registers --settings/-s on cmd and its subcommands.
func AddSettingsFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(settingsFlag, "s", "", "Path to settings.json (default: next to the binary, else the working directory)")
}

// SettingsPath resolves the settings file for cmd.
func SettingsPath(cmd *cobra.Command) string {
	flag := cmd.Flag(settingsFlag)
	if flag == nil {
		return settings.ResolvePath("", false)
	}
	return settings.ResolvePath(flag.Value.String(), flag.Changed)
}

// Run is everything one wrapper invocation owns between setup and exit.
type Run struct {
	Settings *settings.Settings
	Home     string
	Logger   *logging.Logger

	lock *unison.RunLock
}

// Prepare loads and validates settings for mode, opens the log file named
// logName inside log_dir and takes the run lock. Any error here is a
// configuration error and no job may start.
func Prepare(cmd *cobra.Command, mode settings.Mode, logName string, debug bool) (*Run, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	s, err := settings.Load(SettingsPath(cmd), home)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(mode); err != nil {
		return nil, err
	}

	// Past this point errors are not usage errors.
	cmd.SilenceUsage = true

	logger, err := logging.New(logging.Options{
		Path:        s.LogPath(logName),
		Debug:       debug,
		DebugWriter: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("settings loaded", "path", s.Path, "mode", mode.String())

	lock := unison.NewRunLock(s.LogDir)
	run := &Run{Settings: s, Home: home, Logger: logger, lock: lock}
	if err := lock.Acquire(cmd.Context(), logger.Logger); err != nil {
		err = run.Finish(err)
		_ = logger.Close()
		if err == nil {
			return nil, ErrInterrupted
		}
		return nil, err
	}

	return run, nil
}

// Close releases the run lock and closes the log file.
func (r *Run) Close() error {
	return errors.Join(r.lock.Release(), r.Logger.Close())
}

// Finish maps an orchestrator error to the command's result. Cancellation by
// the operator is logged and is not an error.
func (r *Run) Finish(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		r.Logger.Warn("run interrupted")
		return nil
	}
	return err
}

// Execute runs root with SIGINT/SIGTERM cancellation and returns the process
// exit code: 1 if the command failed, 0 otherwise. Unison's own exit codes are
// never surfaced here.
func Execute(root *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root.SilenceErrors = true
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, ErrInterrupted) {
			return 0
		}
		PrintError(root.OutOrStdout(), err)
		return 1
	}
	return 0
}

// PrintError writes err as a single red line.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, color.New(color.FgHiRed, color.Bold).Sprint(err.Error()))
}
