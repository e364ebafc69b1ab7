package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) kindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the registered event kinds and aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := c.codec.Registry()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tVERSION")
			for _, k := range reg.Keys() {
				fmt.Fprintf(w, "%s\t%d\n", k.Kind, k.Version)
			}

			aliases := reg.Aliases()
			if len(aliases) > 0 {
				labels := make([]string, 0, len(aliases))
				for label := range aliases {
					labels = append(labels, label)
				}
				sort.Strings(labels)
				fmt.Fprintln(w)
				fmt.Fprintln(w, "ALIAS\tRESOLVES TO")
				for _, label := range labels {
					fmt.Fprintf(w, "%s\t%s\n", label, aliases[label])
				}
			}
			return w.Flush()
		},
	}
}
