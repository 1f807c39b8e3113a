package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/flexigpt/coderunner-go/runnertool"
)

func newToolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the LLM tool definitions (code.run, code.fix) as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.engine(nil)
			if err != nil {
				return err
			}
			// Registration validates the schemas before they are printed.
			if _, err := eng.NewToolsRegistry(); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(runnertool.Tools())
		},
	}
}
