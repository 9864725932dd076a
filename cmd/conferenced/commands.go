package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"conferencereg/config"
	"conferencereg/internal/adapters/email"
	"conferencereg/internal/domain"
	"conferencereg/internal/services"
)

func newConfigCmd(opts *config.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the merged configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <dotted.key>",
		Short: "Print one configuration value (secrets masked)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, false)
			if err != nil {
				return err
			}
			v, ok := cfg.Redacted().Value(args[0])
			if !ok {
				return fmt.Errorf("unknown configuration key %q", args[0])
			}
			switch v.(type) {
			case map[string]any, []any:
				b, err := yaml.Marshal(v)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(b))
			case nil:
				fmt.Fprintln(cmd.OutOrStdout())
			default:
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	})
	return cmd
}

func newExportCmd(opts *config.Options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all registrants to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, false)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			data, err := a.export.ExportXLSX(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("registrations_%s.xlsx", time.Now().UTC().Format("20060102"))
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default registrations_YYYYMMDD.xlsx)")
	return cmd
}

func newSendTestEmailCmd(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "send-test-email <to> [name]",
		Short: "Send a test message through the configured mailer",
		Long:  "Exit status is 0 when the message was sent, 1 on usage or configuration errors and 2 when delivery failed.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, true)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			mailer, err := a.mailer()
			if err != nil {
				return err
			}
			name := ""
			if len(args) > 1 {
				name = args[1]
			}
			return sendTestEmail(cmd, services.NewTestEmailSender(mailer, email.NewTemplateRenderer(), a.logger), args[0], name)
		},
	}
}

func sendTestEmail(cmd *cobra.Command, sender *services.TestEmailSender, to, name string) error {
	if err := sender.Send(cmd.Context(), to, name); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return err
		}
		return &exitError{code: exitSend, err: err}
	}
	fmt.Fprintln(cmd.OutOrStdout(), "test email sent to", to)
	return nil
}
