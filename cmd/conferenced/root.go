package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"conferencereg/config"
)

func newRootCmd() *cobra.Command {
	opts := config.DefaultOptions()

	root := &cobra.Command{
		Use:           "conferenced",
		Short:         "Conference registration API server and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "base YAML configuration file")
	root.PersistentFlags().StringVar(&opts.LocalPath, "local-config", opts.LocalPath, "local YAML overrides")
	root.PersistentFlags().StringVar(&opts.EnvFile, "env-file", opts.EnvFile, "dotenv file (ignored when GO_ENV=production)")

	serve := newServeCmd(&opts)
	root.RunE = serve.RunE
	root.AddCommand(
		serve,
		newConfigCmd(&opts),
		newExportCmd(&opts),
		newSendTestEmailCmd(&opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig loads the layered configuration and, when validate is set, rejects
// configurations the server could not run with.
func loadConfig(opts *config.Options, validate bool) (*config.Config, error) {
	cfg, err := config.Load(*opts)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "conferenced", version)
			return nil
		},
	}
}
