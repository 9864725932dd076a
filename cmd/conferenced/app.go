package main

import (
	"fmt"
	"log/slog"

	"conferencereg/config"
	"conferencereg/internal/adapters/email"
	"conferencereg/internal/adapters/schema"
	"conferencereg/internal/adapters/upload"
	"conferencereg/internal/delivery/http/middleware"
	"conferencereg/internal/domain"
	"conferencereg/internal/repository/jsonfile"
	"conferencereg/internal/services"
)

// app holds the wired services shared by the server and the maintenance commands.
type app struct {
	cfg           *config.Config
	logger        *slog.Logger
	registrations domain.RegistrationService
	export        domain.ExportService
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(middleware.NewRequestIDHandler(cfg.Logger().Handler()))
}

// newApp wires the registration store and the services built on it.
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	validator, err := schema.NewRecordValidator()
	if err != nil {
		return nil, err
	}
	store := jsonfile.NewRegistrationStore(cfg.Storage.RegistrationsFile, logger, jsonfile.WithLocation(loc))
	registrations := services.NewRegistrationService(store, validator, logger)
	return &app{
		cfg:           cfg,
		logger:        logger,
		registrations: registrations,
		export:        services.NewExportService(registrations, logger),
	}, nil
}

func (a *app) mailer() (domain.Mailer, error) {
	return email.NewMailer(mailerConfig(a.cfg), a.logger)
}

func (a *app) documents(mailer domain.Mailer) domain.DocumentService {
	return services.NewDocumentService(upload.NewValidator(), mailer, email.NewTemplateRenderer(), services.DocumentConfig{
		UploadDir:         a.cfg.Upload.Directory,
		AllowedExtensions: a.cfg.AllowedExtensions(),
		MaxBytes:          a.cfg.UploadMaxBytes(),
		SenderName:        a.cfg.SMTP.FromName,
		CC:                a.cfg.CCRecipients,
	}, a.logger)
}

func mailerConfig(cfg *config.Config) email.MailerConfig {
	return email.MailerConfig{
		Provider:    cfg.SMTP.Provider,
		FromAddress: cfg.SMTP.FromEmail,
		FromName:    cfg.SMTP.FromName,
		SMTP: email.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Username:           cfg.SMTP.Username,
			Password:           cfg.SMTP.Password,
			Security:           cfg.SMTP.Secure,
			DebugLevel:         cfg.SMTP.Debug,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
			Timeout:            cfg.SMTP.Timeout,
		},
		SES: email.SESConfig{
			Region:             cfg.SES.Region,
			AccessKeyID:        cfg.SES.AccessKeyID,
			SecretAccessKey:    cfg.SES.SecretAccessKey,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		},
	}
}
