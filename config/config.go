package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"conferencereg/internal/domain"
)

// DefaultMaxUploadSize is the upload ceiling used when nothing else is configured (5 MiB).
const DefaultMaxUploadSize int64 = 5 * 1024 * 1024

const redactedValue = "********"

// AppConfig holds application-wide switches.
type AppConfig struct {
	Debug         bool   `yaml:"debug"`
	Timezone      string `yaml:"timezone"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

// SMTPConfig holds the outbound mail settings. Provider selects smtp, ses or noop.
type SMTPConfig struct {
	Provider           string        `yaml:"provider"`
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	FromEmail          string        `yaml:"from_email"`
	FromName           string        `yaml:"from_name"`
	Secure             string        `yaml:"secure"` // tls | ssl | none
	Debug              int           `yaml:"debug"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"` // dev only
	Timeout            time.Duration `yaml:"timeout"`
}

// SESConfig holds AWS SES credentials for the ses provider.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// UploadConfig bounds invoice and receipt uploads.
type UploadConfig struct {
	Directory    string   `yaml:"directory"`
	AllowedTypes []string `yaml:"allowed_types"`
	MaxSize      int64    `yaml:"max_size"`
}

// StorageConfig locates the registrations file.
type StorageConfig struct {
	RegistrationsFile string `yaml:"registrations_file"`
}

// SecurityConfig holds CORS settings. No origins means any origin.
type SecurityConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Config holds all configuration for the application. It is built once by Load and
// passed to every component.
type Config struct {
	Environment  string           `yaml:"-"`
	Port         string           `yaml:"port"`
	LogLevel     string           `yaml:"log_level"`
	App          AppConfig        `yaml:"app"`
	SMTP         SMTPConfig       `yaml:"smtp"`
	SES          SESConfig        `yaml:"ses"`
	Upload       UploadConfig     `yaml:"upload"`
	Storage      StorageConfig    `yaml:"storage"`
	CCRecipients []domain.Address `yaml:"cc_recipients"`
	Security     SecurityConfig   `yaml:"security"`

	// Sources lists the files that contributed to this configuration, in load order.
	Sources []string `yaml:"-"`
}

// Options locates the configuration layers. Missing files are skipped.
type Options struct {
	ConfigPath string
	LocalPath  string
	EnvFile    string
}

// DefaultOptions returns the conventional file names in the working directory.
func DefaultOptions() Options {
	return Options{
		ConfigPath: "config.yaml",
		LocalPath:  "config.local.yaml",
		EnvFile:    ".env",
	}
}

// Defaults returns the compiled-in configuration.
func Defaults() *Config {
	return &Config{
		Environment: "development",
		Port:        "8080",
		LogLevel:    "info",
		App: AppConfig{
			Timezone:      "UTC",
			MaxUploadSize: DefaultMaxUploadSize,
		},
		SMTP: SMTPConfig{
			Provider: "smtp",
			Port:     587,
			Secure:   "tls",
			FromName: "Conference Registration",
			Timeout:  30 * time.Second,
		},
		Upload: UploadConfig{
			Directory:    "uploads",
			AllowedTypes: []string{"pdf", "png", "jpg", "jpeg"},
		},
		Storage: StorageConfig{RegistrationsFile: "registrations.json"},
	}
}

// Load builds the configuration from defaults, the base YAML file, the local YAML file,
// the .env file (skipped in production) and finally process environment variables.
func Load(opts Options) (*Config, error) {
	cfg := Defaults()

	for _, path := range []string{opts.ConfigPath, opts.LocalPath} {
		ok, err := cfg.mergeYAML(path)
		if err != nil {
			return nil, err
		}
		if ok {
			cfg.Sources = append(cfg.Sources, path)
		}
	}

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	cfg.Environment = env

	// godotenv never overrides variables already set in the process environment.
	if env != "production" && opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err == nil {
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
			}
			cfg.Sources = append(cfg.Sources, opts.EnvFile)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", opts.EnvFile, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeYAML(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	// yaml.v3 replaces sequences wholesale, so cc_recipients in the local file
	// supersedes the base list.
	if err := yaml.Unmarshal(b, c); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int64, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return i, true, nil
}

func getEnvBool(key string) (bool, bool, error) {
	s, ok := getEnvStr(key)
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return b, true, nil
}

func getEnvCSV(key string) ([]string, bool) {
	s, ok := getEnvStr(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, true
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"PORT":                  &c.Port,
		"LOG_LEVEL":             &c.LogLevel,
		"TIMEZONE":              &c.App.Timezone,
		"MAIL_PROVIDER":         &c.SMTP.Provider,
		"SMTP_HOST":             &c.SMTP.Host,
		"SMTP_USERNAME":         &c.SMTP.Username,
		"SMTP_PASSWORD":         &c.SMTP.Password,
		"SMTP_FROM_EMAIL":       &c.SMTP.FromEmail,
		"SMTP_FROM_NAME":        &c.SMTP.FromName,
		"SMTP_SECURE":           &c.SMTP.Secure,
		"AWS_REGION":            &c.SES.Region,
		"AWS_ACCESS_KEY_ID":     &c.SES.AccessKeyID,
		"AWS_SECRET_ACCESS_KEY": &c.SES.SecretAccessKey,
		"UPLOAD_DIR":            &c.Upload.Directory,
		"REGISTRATIONS_FILE":    &c.Storage.RegistrationsFile,
	}
	for key, dst := range strs {
		if v, ok := getEnvStr(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok, err := getEnvInt("SMTP_PORT"); err != nil {
		return err
	} else if ok {
		c.SMTP.Port = int(v)
	}
	if v, ok, err := getEnvInt("SMTP_DEBUG"); err != nil {
		return err
	} else if ok {
		c.SMTP.Debug = int(v)
	}
	if v, ok, err := getEnvInt("MAX_UPLOAD_BYTES"); err != nil {
		return err
	} else if ok {
		c.Upload.MaxSize = v
	}
	if v, ok, err := getEnvBool("APP_DEBUG"); err != nil {
		return err
	} else if ok {
		c.App.Debug = v
	}
	if v, ok := getEnvCSV("CORS_ALLOWED_ORIGINS"); ok {
		c.Security.AllowedOrigins = v
	}
	return nil
}

// Validate reports every problem that would prevent the service from running.
func (c *Config) Validate() error {
	var problems []string
	switch c.SMTP.Provider {
	case "", "smtp":
		if strings.TrimSpace(c.SMTP.Host) == "" {
			problems = append(problems, "smtp.host is required")
		}
		if c.SMTP.Port <= 0 {
			problems = append(problems, "smtp.port is required")
		}
		if strings.TrimSpace(c.SMTP.FromEmail) == "" {
			problems = append(problems, "smtp.from_email is required")
		}
		if strings.TrimSpace(c.SMTP.FromName) == "" {
			problems = append(problems, "smtp.from_name is required")
		}
	case "ses":
		if c.SES.Region == "" {
			problems = append(problems, "ses.region is required for the ses provider")
		}
		if strings.TrimSpace(c.SMTP.FromEmail) == "" {
			problems = append(problems, "smtp.from_email is required")
		}
	case "noop":
	default:
		problems = append(problems, fmt.Sprintf("smtp.provider %q is not one of smtp, ses, noop", c.SMTP.Provider))
	}
	if !slices.Contains([]string{"tls", "ssl", "none"}, c.SMTP.Secure) {
		problems = append(problems, fmt.Sprintf("smtp.secure %q is not one of tls, ssl, none", c.SMTP.Secure))
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("app.timezone: %v", err))
	}
	if c.UploadMaxBytes() <= 0 {
		problems = append(problems, "upload.max_size must be positive")
	}
	if len(c.AllowedExtensions()) == 0 {
		problems = append(problems, "upload.allowed_types is empty")
	}
	if c.Storage.RegistrationsFile == "" {
		problems = append(problems, "storage.registrations_file is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the time zone used for created_at stamps.
func (c *Config) Location() (*time.Location, error) {
	tz := c.App.Timezone
	if tz == "" {
		tz = "UTC"
	}
	return time.LoadLocation(tz)
}

// UploadMaxBytes returns upload.max_size when set, else app.max_upload_size.
func (c *Config) UploadMaxBytes() int64 {
	if c.Upload.MaxSize > 0 {
		return c.Upload.MaxSize
	}
	return c.App.MaxUploadSize
}

// AllowedExtensions returns the lowercased upload extensions without leading dots.
func (c *Config) AllowedExtensions() []string {
	out := make([]string, 0, len(c.Upload.AllowedTypes))
	for _, t := range c.Upload.AllowedTypes {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// Redacted returns a copy with credentials masked.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.CCRecipients = slices.Clone(c.CCRecipients)
	cp.Upload.AllowedTypes = slices.Clone(c.Upload.AllowedTypes)
	cp.Security.AllowedOrigins = slices.Clone(c.Security.AllowedOrigins)
	cp.Sources = slices.Clone(c.Sources)
	if cp.SMTP.Password != "" {
		cp.SMTP.Password = redactedValue
	}
	if cp.SES.AccessKeyID != "" {
		cp.SES.AccessKeyID = redactedValue
	}
	if cp.SES.SecretAccessKey != "" {
		cp.SES.SecretAccessKey = redactedValue
	}
	return &cp
}

// Value resolves a dotted key such as "smtp.host" against the merged configuration.
// Keys use the YAML names. The second result is false when the key does not exist.
func (c *Config) Value(key string) (any, bool) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, false
	}
	var tree map[string]any
	if err := yaml.Unmarshal(b, &tree); err != nil {
		return nil, false
	}
	var cur any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
