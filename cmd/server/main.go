package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/greenhaven/internal/config"
	"github.com/Skotchmaster/greenhaven/internal/db"
	"github.com/Skotchmaster/greenhaven/internal/logging"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "GreenHaven storefront backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.Load())
		},
	}

	cmd.AddCommand(serveCmd(), migrateCmd(), versionCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.Load())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
			log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			gdb, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(gdb); err != nil {
					log.Warn("db_close_error", "error", err)
				}
			}()

			if err := db.Migrate(ctx, gdb); err != nil {
				return err
			}
			log.Info("migrate_success")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "storefront %s\n", Version)
		},
	}
}
