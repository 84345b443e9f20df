package main

import (
	"github.com/spf13/cobra"

	"cookassistant"
	"cookassistant/setup"
)

func newNutritionCmd() *cobra.Command {
	var summaryOnly bool
	cmd := &cobra.Command{
		Use:   "nutrition <dish>...",
		Short: "Look up calories for one or more dishes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := loadApp(cmd.Context(), setup.BackendMock, cookassistant.NewNoOpRunLogger())
			if err != nil {
				return err
			}

			if len(args) == 1 {
				return printJSON(cmd.OutOrStdout(), app.Nutrition.Lookup(cmd.Context(), args[0], !summaryOnly))
			}
			res, err := app.Nutrition.LookupBatch(cmd.Context(), args, !summaryOnly)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&summaryOnly, "calories-only", false, "Leave out the full nutrition facts")
	return cmd
}
