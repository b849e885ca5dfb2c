// Command localsync runs unison once for every root pair listed under
// local_sync in settings.json.
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
	var only string

	cmd := &cobra.Command{
		Use:     "localsync",
		Short:   "Synchronize every configured root pair with Unison",
		Version: version.Detailed(),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := cmdutil.Prepare(cmd, settings.ModeBatch, settings.BatchLogName, opts.Debug)
			if err != nil {
				return err
			}
			defer run.Close()

			pairs, err := run.Settings.RootPairs(run.Home)
			if err != nil {
				return err
			}
			pairs, err = unison.FilterPairs(pairs, only)
			if err != nil {
				return err
			}
			for _, p := range pairs {
				run.Logger.Debug("Adding root pair", "index", p.Index, "local", p.Local, "remote", p.Remote)
			}

			o := unison.New(unison.Config{
				UnisonPath: run.Settings.UnisonPath,
				LogPath:    run.Settings.LogPath(settings.BatchLogName),
				Options:    opts,
				Console:    unison.NewConsole(cmd.OutOrStdout()),
				Logger:     run.Logger.Logger,
			})
			// Failed pairs are reported, not returned: the exit code stays 0.
			_, err = o.RunBatch(cmd.Context(), pairs)
			return run.Finish(err)
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Enable debug mode (Unison will print a LOT of information!)")
	cmd.Flags().BoolVar(&opts.Manual, "manual", false, "Unison will ask users to confirm before starting file transfer")
	cmd.Flags().StringVar(&only, "only", "", "Only sync pairs whose first relative path matches this glob")
	cmdutil.AddSettingsFlag(cmd)

	cmd.AddCommand(
		newRootsCmd(),
		cmdutil.NewSettingsPathCmd(),
		cmdutil.NewVersionCmd(),
	)
	return cmd
}

func main() {
	os.Exit(cmdutil.Execute(rootCmd))
}
