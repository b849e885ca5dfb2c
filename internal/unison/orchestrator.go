package unison

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/openmined/unisync/internal/settings"
)

// Config describes one wrapper run. Only UnisonPath and LogPath are required.
type Config struct {
	UnisonPath string
	LogPath    string
	Options    Options

	// Launcher defaults to an ExecLauncher on the process's stdio.
	Launcher Launcher
	// Console defaults to stdout.
	Console *Console
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Orchestrator runs unison jobs one at a time and reports each outcome.
type Orchestrator struct {
	unison   string
	logPath  string
	opts     Options
	launcher Launcher
	console  *Console
	logger   *slog.Logger
	now      func() time.Time
}

// New returns an Orchestrator for cfg, filling in defaults for unset fields.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		unison:   cfg.UnisonPath,
		logPath:  cfg.LogPath,
		opts:     cfg.Options,
		launcher: cfg.Launcher,
		console:  cfg.Console,
		logger:   cfg.Logger,
		now:      time.Now,
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.console == nil {
		o.console = NewConsole(os.Stdout)
	}
	if o.launcher == nil {
		o.launcher = NewExecLauncher(o.logger)
	}
	return o
}

// RunBatch syncs every pair in order. A failed pair is reported and the batch
// moves on; the returned error is non-nil only for launch errors or
// cancellation, in which case the remaining pairs are not attempted.
func (o *Orchestrator) RunBatch(ctx context.Context, pairs []settings.RootPair) ([]Result, error) {
	o.logger.Info("Unison wrapper for local synchronization started", "pairs", len(pairs))
	defer o.logger.Info("Unison wrapper for local sync exited")

	results := make([]Result, 0, len(pairs))
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		label := fmt.Sprintf("%d-th pair's sync", pair.Index)
		o.announce(fmt.Sprintf("%s about to start--[%s] and [%s]", label, pair.Local, pair.Remote))

		argv := BatchArgs(o.unison, pair.Local, pair.Remote, o.logPath, o.opts)
		res, err := o.run(ctx, label, argv)
		if err != nil {
			return results, err
		}
		o.report(res)
		results = append(results, res)
	}
	return results, nil
}

// RunProfile runs a single named profile. profileArg is what unison receives,
// usually settings.ProfilePath(name).
func (o *Orchestrator) RunProfile(ctx context.Context, name string, profileArg string) (Result, error) {
	o.logger.Info("Unison wrapper started", "profile", name)
	if o.opts.Debug {
		o.logger.Debug("Debug mode enabled")
	}

	o.announce(fmt.Sprintf("Profile [%s] sync about to start", name))

	argv := ProfileArgs(o.unison, profileArg, o.logPath, o.opts)
	res, err := o.run(ctx, "Unison", argv)
	if err != nil {
		return res, err
	}
	o.report(res)

	if o.opts.Timer {
		o.console.Println(FormatElapsed(res.Elapsed))
	}
	return res, nil
}

func (o *Orchestrator) announce(msg string) {
	o.logger.Info(msg)
	if o.opts.Manual {
		o.console.Println(msg)
	}
}

func (o *Orchestrator) run(ctx context.Context, label string, argv []string) (Result, error) {
	o.logger.Debug("Command about to be executed", "argv", argv)

	start := o.now()
	code, err := o.launcher.Launch(ctx, argv)
	res := NewResult(label, code, o.now().Sub(start))
	if err != nil {
		o.logger.Error(label+" did not complete", "error", err)
		return res, err
	}
	return res, nil
}

func (o *Orchestrator) report(res Result) {
	msg := res.String()
	if res.OK() {
		o.logger.Info(msg)
		if o.opts.Manual {
			o.console.Success(msg)
		}
		return
	}
	o.console.Failure(msg)
	o.logger.Error(msg)
}

// FilterPairs keeps the pairs whose side-A fragment matches pattern, preserving
// order and original indexes. An empty pattern keeps everything.
func FilterPairs(pairs []settings.RootPair, pattern string) ([]settings.RootPair, error) {
	if pattern == "" {
		return pairs, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid root pattern %q", pattern)
	}

	var kept []settings.RootPair
	for _, p := range pairs {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(p.Fragment)); ok {
			kept = append(kept, p)
		}
	}
	return kept, nil
}
