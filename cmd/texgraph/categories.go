package main

import (
	"fmt"
	"strings"

	"github.com/dgallion1/texgraph/internal/category"
	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Print the statement category legend",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := category.Default()
		if flagCategories != "" {
			var err error
			if table, err = category.Load(flagCategories); err != nil {
				return err
			}
		}
		for _, kind := range category.Order {
			st := table.Style(kind)
			fmt.Printf("%-13s aliases: %-40s %s/%s/%s\n",
				kind,
				strings.Join(table.Aliases(kind), ", "),
				st.Shape, st.BorderColor, st.FillColor)
		}
		return nil
	},
}

func init() {
	categoriesCmd.Flags().StringVar(&flagCategories, "categories", "", "TOML file overriding the category table")
}
