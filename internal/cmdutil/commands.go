package cmdutil

import (
	"fmt"

	"github.com/openmined/unisync/internal/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd prints the application name and build details.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.DetailedWithApp())
			return err
		},
	}
}

// NewSettingsPathCmd prints the settings file a run would read, without loading it.
func NewSettingsPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings-path",
		Short: "Print the resolved settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), SettingsPath(cmd))
			return err
		},
	}
}
