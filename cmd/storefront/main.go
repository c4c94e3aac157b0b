package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/config"
	"github.com/fastygo/storefront/internal/services/lifecycle"
	"github.com/fastygo/storefront/internal/shell"
	"github.com/fastygo/storefront/pkg/logger"
)

var (
	app     *shell.App
	verbose bool
)

func main() {
	ctx, cancel := lifecycle.New(0, nil).WithSignals(context.Background())
	err := execute(ctx, os.Args[1:])
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs one command and then releases the app, failed commands included.
func execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	shutdown()
	return err
}

func shutdown() {
	if app == nil {
		return
	}
	if err := app.Close(context.Background()); err != nil {
		app.Logger.Error("shutdown failed", zap.Error(err))
	}
	_ = app.Logger.Sync()
	app = nil
}

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront and back-office client",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		level := cfg.Logger.Level
		if verbose {
			level = "debug"
		}
		zapLogger, err := logger.New(logger.Config{Level: level, Encoding: cfg.Logger.Encoding})
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}

		app, err = shell.New(cmd.Context(), cfg, zapLogger.Named(cfg.AppName))
		if err != nil {
			return err
		}
		app.Start(cmd.Context())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(productsCmd, categoriesCmd)
	rootCmd.AddCommand(checkoutCmd, ordersCmd)
	rootCmd.AddCommand(statusCmd)
}

// query runs a read action at location and prints its result.
func query(cmd *cobra.Command, location, action string, payload interface{}) error {
	app.Navigate(location)
	ctx := logger.ContextWithAction(cmd.Context(), action)
	out, err := app.Dispatcher.ExecuteQuery(ctx, action, payload)
	return finish(cmd, out, err)
}

// command runs a state-changing action at location and prints its result.
func command(cmd *cobra.Command, location, action string, payload interface{}) error {
	app.Navigate(location)
	ctx := logger.ContextWithAction(cmd.Context(), action)
	out, err := app.Dispatcher.ExecuteCommand(ctx, action, payload)
	return finish(cmd, out, err)
}

func finish(cmd *cobra.Command, out interface{}, err error) error {
	if err != nil {
		return describe(err)
	}
	if out == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func describe(err error) error {
	if errors.Is(err, domain.ErrSessionInvalidated) {
		next := "storefront login"
		if app.Location() == shell.AdminLoginRoute {
			next = "storefront admin login"
		}
		return fmt.Errorf("%s (run %q)", domain.Message(err), next)
	}
	return errors.New(domain.Message(err))
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
