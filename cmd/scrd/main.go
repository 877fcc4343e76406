package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/supplychain-resilience/scr/cmd"
	"github.com/supplychain-resilience/scr/internal"
	"github.com/supplychain-resilience/scr/internal/daemon"
	"github.com/supplychain-resilience/scr/internal/logr"
)

func main() {
	// Configure ^C to terminate program
	ctx, cancel := cmd.SignalContext(context.Background())
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg := daemon.NewConfig()

	var version bool

	root := &cobra.Command{
		Use:           "scrd",
		Short:         "supply chain resilience daemon",
		Long:          "scrd serves the monthly update service for supply chain resilience.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			if version {
				fmt.Fprintln(c.OutOrStdout(), internal.Version)
				return nil
			}
			logger, err := logr.New(&cfg.LogConfig)
			if err != nil {
				return err
			}
			d, err := daemon.New(c.Context(), logger, cfg)
			if err != nil {
				return err
			}
			// block until ^C received
			return d.Start(c.Context(), make(chan struct{}))
		},
	}
	root.SetOut(out)
	root.SetArgs(args)

	root.PersistentFlags().StringVar(&cfg.Database, "database", "", "Postgres connection string. Leave empty to keep data in memory.")
	root.PersistentFlags().Var(&cfg.Secret, "secret", "Hex-encoded 16 byte secret for signing sessions and forms. Required.")
	logr.LoadConfigFromFlags(root.PersistentFlags(), &cfg.LogConfig)

	root.Flags().StringVar(&cfg.Address, "address", cfg.Address, "Listening address")
	root.Flags().BoolVar(&cfg.SSL, "ssl", false, "Toggle SSL")
	root.Flags().StringVar(&cfg.CertFile, "cert-file", "", "Path to SSL certificate (required if enabling SSL)")
	root.Flags().StringVar(&cfg.KeyFile, "key-file", "", "Path to SSL key (required if enabling SSL)")
	root.Flags().BoolVar(&cfg.EnableRequestLogging, "log-http-requests", false, "Log HTTP requests")
	root.Flags().BoolVar(&cfg.SecureCookies, "secure-cookies", false, "Only send cookies over HTTPS, e.g. when behind a TLS terminating proxy")
	root.Flags().BoolVar(&version, "version", false, "Print version of scrd")

	root.AddCommand(newAdminCommand(&cfg))

	if err := cmd.SetFlagsFromEnvVariables(root.PersistentFlags()); err != nil {
		return err
	}
	if err := cmd.SetFlagsFromEnvVariables(root.Flags()); err != nil {
		return err
	}
	return root.ExecuteContext(ctx)
}
