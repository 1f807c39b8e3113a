package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flexigpt/coderunner-go/spec"
)

func newRunCmd(a *app) *cobra.Command {
	var answers []string
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Repair and run a script once, answering its prompts from --answer",
		Long: `Repair and run a script once. Every input() call site takes the next
--answer value, in source order. Use "-" to read the script from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			eng, err := a.engine(nil)
			if err != nil {
				return err
			}
			res, err := eng.Run(cmd.Context(), spec.RunArgs{Code: code, Inputs: answers})
			if errors.Is(err, spec.ErrMissingInputs) {
				p := eng.Prepare(code)
				fmt.Fprintf(cmd.ErrOrStderr(), "script needs %d answers:\n", len(p.Prompts))
				for i, q := range p.Prompts {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %d. %s\n", i+1, q)
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Output)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&answers, "answer", "a", nil, "answer for the next prompt (repeatable)")
	return cmd
}

func readSource(stdin io.Reader, path string) (string, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(raw), nil
}
