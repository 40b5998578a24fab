package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/scan"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	var (
		concurrency int
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "scan [workspace...]",
		Short: "Build descriptors for every store in the given workspaces (all when none are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, cleanup, err := opts.buildService(cmd)
			defer cleanup()
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = cfg.ScanConcurrency
			}

			collector := &scan.Collector{}
			scanner := scan.New(svc, nil)
			result, err := scanner.Scan(cmd.Context(), scan.ScanOptions{
				Workspaces:  args,
				Processor:   collector,
				Concurrency: concurrency,
				DryRun:      dryRun,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "found %d stores, processed %d, failed %d\n",
				result.TotalFound, result.TotalProcessed, result.TotalFailed)
			for _, name := range result.FailedStores {
				fmt.Fprintf(cmd.ErrOrStderr(), "  failed: %s\n", name)
			}
			if dryRun {
				return nil
			}

			descriptors := collector.Descriptors()
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), descriptors)
			}

			table := newTable(cmd.OutOrStdout(), "WORKSPACE", "NAME", "TYPE", "KIND", "CONTENTS", "LAYERS")
			for _, d := range descriptors {
				contents := "-"
				if d.Contents != nil {
					contents = strconv.Itoa(len(d.Contents))
				}
				if err := table.Append([]string{d.Workspace, d.Name, string(d.Type), string(d.Kind), contents, strconv.Itoa(len(d.Layers))}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Descriptors built at once (default from SCAN_CONCURRENCY)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the stores that would be described without opening them")
	return cmd
}
