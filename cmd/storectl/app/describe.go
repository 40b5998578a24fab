package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <workspace> <name>",
		Short: "Build and print the descriptor of a store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, cleanup, err := opts.buildService(cmd)
			defer cleanup()
			if err != nil {
				return err
			}

			d, err := svc.DescribeStore(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			return writeDescriptor(cmd.OutOrStdout(), d)
		},
	}
}

func writeDescriptor(w io.Writer, d *storeinfo.StoreDescriptor) error {
	fields := newTable(w, "FIELD", "VALUE")
	rows := [][2]string{
		{"workspace", d.Workspace},
		{"name", d.Name},
		{"type", string(d.Type)},
		{"kind", string(d.Kind)},
		{"enabled", strconv.FormatBool(d.Enabled)},
		{"format", d.Format},
		{"source", d.Source},
	}
	if d.WMS != "" {
		rows = append(rows, [2]string{"wms", d.WMS})
	}
	for _, e := range d.Connection {
		rows = append(rows, [2]string{"connection." + e.Key, e.Value})
	}
	if d.Error != nil {
		rows = append(rows, [2]string{"error", d.Error.Message})
	}
	for _, r := range rows {
		if err := fields.Append([]string{r[0], r[1]}); err != nil {
			return err
		}
	}
	if err := fields.Render(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if d.Contents == nil {
		fmt.Fprintln(w, "Contents: unavailable")
	} else {
		contents := newTable(w, "CONTENT", "GEOMETRY", "TITLE")
		for _, c := range d.Contents {
			if err := contents.Append([]string{c.Name, c.Geometry, c.Title}); err != nil {
				return err
			}
		}
		if err := contents.Render(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	layers := newTable(w, "LAYER", "TYPE", "CONTENT", "TITLE")
	for _, l := range d.Layers {
		if err := layers.Append([]string{l.Name, string(l.Type), l.Content, l.Title}); err != nil {
			return err
		}
	}
	return layers.Render()
}
