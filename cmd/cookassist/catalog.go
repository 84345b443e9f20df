package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cookassistant"
	"cookassistant/setup"
	"cookassistant/tools"
)

// Catalog commands never call a model, so they run on the offline backend.
func newRecipesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Browse the recipe catalog",
	}
	cmd.AddCommand(newRecipesListCmd(), newRecipesCategoryCmd(), newRecipesFindCmd())
	return cmd
}

func catalog(cmd *cobra.Command) (*tools.Catalog, error) {
	app, _, err := loadApp(cmd.Context(), setup.BackendMock, cookassistant.NewNoOpRunLogger())
	if err != nil {
		return nil, err
	}
	return app.Catalog, nil
}

func printRecipes(cmd *cobra.Command, recipes []tools.SimpleRecipe) {
	for _, r := range recipes {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ID, r.Name, r.Description)
	}
}

func newRecipesListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog(cmd)
			if err != nil {
				return err
			}
			res, err := c.All(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRecipes(cmd, res.Recipes)
			fmt.Fprintln(cmd.ErrOrStderr(), res.Message)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum recipes to show (0 for all)")
	return cmd
}

func newRecipesCategoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "category <name>",
		Short: "List recipes in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog(cmd)
			if err != nil {
				return err
			}
			res, err := c.ByCategory(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if res.Total == 0 {
				return fmt.Errorf("%s (available: %s)", res.Message, strings.Join(res.AvailableCategories, ", "))
			}
			printRecipes(cmd, res.Recipes)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum recipes to show (0 for all)")
	return cmd
}

func newRecipesFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <name or id>",
		Short: "Show one recipe in full",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog(cmd)
			if err != nil {
				return err
			}
			res, err := c.Find(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if res.Recipe == nil {
				var names []string
				for _, m := range res.PossibleMatches {
					names = append(names, m.Name)
				}
				if len(names) > 0 {
					return fmt.Errorf("%s (did you mean: %s)", res.Message, strings.Join(names, ", "))
				}
				return fmt.Errorf("%s", res.Message)
			}
			return printJSON(cmd.OutOrStdout(), res.Recipe)
		},
	}
}
