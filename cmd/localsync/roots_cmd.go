package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/openmined/unisync/internal/cmdutil"
	"github.com/openmined/unisync/internal/settings"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	indexStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func newRootsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "roots",
		Short: "Print the root pairs a sync would use, without running Unison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			s, err := settings.Load(cmdutil.SettingsPath(cmd), home)
			if err != nil {
				return err
			}
			pairs, err := s.RootPairs(home)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true
			return writePairs(cmd.OutOrStdout(), pairs, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func writePairs(w io.Writer, pairs []settings.RootPair, format string) error {
	if pairs == nil {
		pairs = []settings.RootPair{}
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(pairs, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(pairs); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		if _, err := fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d root pair(s)", len(pairs)))); err != nil {
			return err
		}
		for _, p := range pairs {
			if _, err := fmt.Fprintf(w, "%s [%s] <-> [%s]\n", indexStyle.Render(strconv.Itoa(p.Index)), p.Local, p.Remote); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
