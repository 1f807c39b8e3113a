package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flexigpt/coderunner-go/spec"
)

func newFixCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fix FILE",
		Short: "Print the repaired script and the prompts it will ask, without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			eng, err := a.engine(nil)
			if err != nil {
				return err
			}
			res, err := eng.Fix(cmd.Context(), spec.FixArgs{Code: code})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintln(out, res.Script)
			for i, q := range res.Prompts {
				fmt.Fprintf(cmd.ErrOrStderr(), "prompt %d: %s\n", i+1, q)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print script and prompts as JSON")
	return cmd
}
