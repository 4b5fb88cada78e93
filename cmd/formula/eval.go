package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/formula"
)

func newEvalCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "eval -- token...",
		Short: "Evaluate a formula given as tokens",
		Long: `eval types each argument as one token of a formula, then submits it and
prints the result. A final "=" is optional.`,
		Example: `  formula eval -- 3 + 4
  formula eval -- "(" 3 + 4 ")" "*" 2
  formula --config formula.yaml eval -- price "*" 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			defer s.close()
			ctx := cmd.Context()
			for _, arg := range args {
				if eff := s.commit(ctx, arg); eff == formula.EffectDropped {
					fmt.Fprintf(cmd.ErrOrStderr(), "dropped operator %q\n", arg)
				}
			}
			s.state.Builder.Submit()
			f := s.last()
			if f == nil {
				return errors.New("empty formula")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", f.Tokens(), f.Result())
			if err := f.Err(); err != nil {
				return fmt.Errorf("evaluating %s: %w", formula.Render(f.Tokens()), err)
			}
			return nil
		},
	}
}
