package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Resolve a question against the knowledge base",
		Long:  "Resolve one question, or read one question per line from stdin when none is given. Lines share a single session.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.runtime()
			if err != nil {
				return err
			}
			defer rt.cleanup()

			ctx := commandContext(cmd)
			sess := rt.engine.NewSession(uuid.New())
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				result, ok := sess.HandleUtterance(ctx, strings.Join(args, " "))
				if !ok {
					return fmt.Errorf("question is empty")
				}
				return printResult(out, result, asJSON)
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			for {
				line, readErr := reader.ReadString('\n')
				if readErr != nil && !errors.Is(readErr, io.EOF) {
					return readErr
				}
				if result, ok := sess.HandleUtterance(ctx, strings.TrimRight(line, "\r\n")); ok {
					if err := printResult(out, result, asJSON); err != nil {
						return err
					}
				}
				if readErr != nil {
					return nil
				}
			}
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func printResult(w io.Writer, result faq.Result, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(result)
	}
	switch result.Outcome {
	case faq.OutcomeAnswered:
		fmt.Fprintf(w, "answered (score %d)\n  Q: %s\n  A: %s\n", result.Score, result.MatchedQuestion, result.Answer)
	case faq.OutcomeBlocked:
		fmt.Fprintln(w, "blocked")
	default:
		fmt.Fprintf(w, "unanswered (best score %d)\n", result.Score)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  warning: %s: %s\n", warning.Code, warning.Message)
	}
	return nil
}
