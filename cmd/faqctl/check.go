package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-chatbot/internal/domain/moderation"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var listKeywords bool
	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Run text through the content filter only",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			filter := moderation.NewFilter(cfg.FAQ.BlockedKeywords)
			out := cmd.OutOrStdout()
			if listKeywords {
				for _, keyword := range filter.Keywords() {
					fmt.Fprintln(out, keyword)
				}
				if len(args) == 0 {
					return nil
				}
			}
			if len(args) == 0 {
				return errors.New("check needs text or --keywords")
			}

			keyword, blocked := filter.Match(strings.Join(args, " "))
			if blocked {
				fmt.Fprintf(out, "blocked (keyword %q)\n", keyword)
				return nil
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
	cmd.Flags().BoolVar(&listKeywords, "keywords", false, "print the active blocked keywords")
	return cmd
}
