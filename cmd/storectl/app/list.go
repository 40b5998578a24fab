package app

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newWorkspacesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "workspaces",
		Short: "List workspaces that hold stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, cleanup, err := opts.buildService(cmd)
			defer cleanup()
			if err != nil {
				return err
			}

			workspaces, err := svc.ListWorkspaces(cmd.Context())
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				if workspaces == nil {
					workspaces = []string{}
				}
				return writeJSON(cmd.OutOrStdout(), workspaces)
			}

			table := newTable(cmd.OutOrStdout(), "WORKSPACE")
			for _, ws := range workspaces {
				if err := table.Append([]string{ws}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <workspace>",
		Short: "List the stores of a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := opts.buildService(cmd)
			defer cleanup()
			if err != nil {
				return err
			}

			summaries, err := svc.ListStores(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), summaries)
			}

			table := newTable(cmd.OutOrStdout(), "WORKSPACE", "NAME", "TYPE", "KIND", "ENABLED", "SOURCE")
			for _, s := range summaries {
				if err := table.Append([]string{s.Workspace, s.Name, string(s.Type), string(s.Kind), strconv.FormatBool(s.Enabled), s.Source}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}
