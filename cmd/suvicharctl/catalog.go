package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psytech/suvichar/internal/catalog"
	"github.com/psytech/suvichar/internal/quotes"
)

func (a *app) templatesCmd() *cobra.Command {
	var premium bool
	var category string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Browse the bundled template catalog",
	}
	cmd.PersistentFlags().BoolVar(&premium, "premium", false, "show the full (premium) view")

	list := &cobra.Command{
		Use:   "list",
		Short: "List templates, optionally for one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := catalog.Bundled()
			if err != nil {
				return err
			}
			v := catalog.VariantFor(premium)
			if category == "" {
				return printJSON(cmd.OutOrStdout(), c.ListAll(v))
			}
			cat, err := catalog.ParseCategory(category)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c.ListByCategory(v, cat))
		},
	}
	list.Flags().StringVar(&category, "category", "", "category tag, e.g. GOOD_MORNING")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Bundled()
			if err != nil {
				return err
			}
			t, ok := c.GetByID(catalog.VariantFor(premium), args[0])
			if !ok {
				return fmt.Errorf("template %q not found", args[0])
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}

	var width, height int
	preview := &cobra.Command{
		Use:   "preview <id>",
		Short: "Write the placeholder SVG preview for a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Bundled()
			if err != nil {
				return err
			}
			t, ok := c.GetByID(catalog.Full, args[0])
			if !ok {
				return fmt.Errorf("template %q not found", args[0])
			}
			_, err = cmd.OutOrStdout().Write(catalog.PreviewSVG(t, width, height))
			return err
		},
	}
	preview.Flags().IntVar(&width, "width", 540, "preview width")
	preview.Flags().IntVar(&height, "height", 960, "preview height")

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List categories in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, c := range catalog.Categories() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s %s\n", c, catalog.FallbackColor(c), c.Label())
			}
			return nil
		},
	}

	cmd.AddCommand(list, show, preview, categories)
	return cmd
}

func (a *app) quotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Browse the bundled quote pool",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "random <category>",
		Short: "Print a random quote for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.ParseCategory(args[0])
			if err != nil {
				return err
			}
			pool, err := quotes.Bundled()
			if err != nil {
				return err
			}
			q, ok := pool.Random(cat)
			if !ok {
				return fmt.Errorf("no quotes for %s", cat)
			}
			fmt.Fprintln(cmd.OutOrStdout(), q)
			return nil
		},
	})
	return cmd
}
