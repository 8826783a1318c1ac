package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psytech/suvichar/internal/downloads"
	"github.com/psytech/suvichar/internal/kv"
	"github.com/psytech/suvichar/internal/premium"
	"github.com/psytech/suvichar/internal/profile"
)

func (a *app) premiumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "premium",
		Short: "Inspect or change the stored premium state",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the premium state, downgrading it if expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store kv.Store) error {
				s := premium.NewStore(store, a.logger(cmd), nil)
				if _, err := s.IsPremium(ctx); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s.GetState(ctx))
			})
		},
	}

	upgrade := &cobra.Command{
		Use:   "upgrade <MONTHLY|YEARLY>",
		Short: "Activate a plan without checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := premium.ParsePlan(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store kv.Store) error {
				st, err := premium.NewStore(store, a.logger(cmd), nil).Upgrade(ctx, plan)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), st)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the premium record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store kv.Store) error {
				if err := premium.NewStore(store, a.logger(cmd), nil).Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "premium state cleared")
				return nil
			})
		},
	}

	cmd.AddCommand(status, upgrade, clearCmd)
	return cmd
}

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect or reset the stored profile",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store kv.Store) error {
				p, ok := profile.NewStore(store, a.logger(cmd)).Load(ctx)
				if !ok {
					return fmt.Errorf("no profile stored")
				}
				return printJSON(cmd.OutOrStdout(), p)
			})
		},
	}, &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store kv.Store) error {
				if err := profile.NewStore(store, a.logger(cmd)).Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "profile cleared")
				return nil
			})
		},
	})
	return cmd
}

func (a *app) downloadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "downloads",
		Short: "Inspect saved cards",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved asset references, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store kv.Store) error {
				for _, ref := range downloads.NewStore(store, a.logger(cmd)).List(ctx) {
					fmt.Fprintln(cmd.OutOrStdout(), ref)
				}
				return nil
			})
		},
	})
	return cmd
}
