// Command unisync runs one named Unison profile.
package main

import (
	"os"

	"github.com/openmined/unisync/internal/cmdutil"
	"github.com/openmined/unisync/internal/settings"
	"github.com/openmined/unisync/internal/unison"
	"github.com/openmined/unisync/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	var opts unison.Options
	var profile string

	cmd := &cobra.Command{
		Use:     "unisync --profile NAME",
		Short:   "Run a Unison profile and log the outcome",
		Version: version.Detailed(),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := cmdutil.Prepare(cmd, settings.ModeProfile, profile, opts.Debug)
			if err != nil {
				return err
			}
			defer run.Close()

			o := unison.New(unison.Config{
				UnisonPath: run.Settings.UnisonPath,
				LogPath:    run.Settings.LogPath(profile),
				Options:    opts,
				Console:    unison.NewConsole(cmd.OutOrStdout()),
				Logger:     run.Logger.Logger,
			})
			_, err = o.RunProfile(cmd.Context(), profile, run.Settings.ProfilePath(profile))
			return run.Finish(err)
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Name of the Unison profile, excluding .prf; looked up in profile_dir when set, otherwise by Unison in its own profile directory")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Enable debug mode (Unison will print a LOT of information!)")
	cmd.Flags().BoolVar(&opts.Manual, "manual", false, "Unison will ask users to confirm before starting file transfer")
	cmd.Flags().BoolVar(&opts.Timer, "timer", false, "Print elapsed time at the end of synchronization")
	_ = cmd.MarkFlagRequired("profile")
	cmdutil.AddSettingsFlag(cmd)

	cmd.AddCommand(
		cmdutil.NewSettingsPathCmd(),
		cmdutil.NewVersionCmd(),
	)
	return cmd
}

func main() {
	os.Exit(cmdutil.Execute(rootCmd))
}
