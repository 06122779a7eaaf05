package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKBCmd(opts *rootOptions) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Load the knowledge base and report its size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.runtime()
			if err != nil {
				return err
			}
			defer rt.cleanup()

			kb, err := rt.loader.Snapshot(commandContext(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source: %s\nentries: %d\n", rt.cfg.FAQ.Source.Kind, kb.Len())
			if list {
				for i, entry := range kb.Entries() {
					fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, entry.Question, entry.Answer)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print every entry")
	return cmd
}
