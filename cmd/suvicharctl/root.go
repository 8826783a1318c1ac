package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/psytech/suvichar/internal/config"
	"github.com/psytech/suvichar/internal/kv"
	"github.com/psytech/suvichar/internal/logging"
)

type app struct {
	logLevel string
	// openStore is swapped in tests.
	openStore func(ctx context.Context) (kv.Store, func() error, error)
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func newApp() *app {
	a := &app{}
	a.openStore = openConfiguredStore
	return a
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "suvicharctl",
		Short:         "Inspect the Suvichar catalog and local records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.templatesCmd(),
		a.quotesCmd(),
		a.premiumCmd(),
		a.profileCmd(),
		a.downloadsCmd(),
	)
	return root
}

func openConfiguredStore(ctx context.Context) (kv.Store, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return kv.Open(ctx, cfg)
}

func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, store kv.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeStore()
	return fn(ctx, store)
}

func (a *app) logger(cmd *cobra.Command) *slog.Logger {
	return logging.NewWithWriter(cmd.ErrOrStderr(), a.logLevel, "text")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
