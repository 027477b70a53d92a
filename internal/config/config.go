// Package config assembles the runtime configuration from flags, environment,
// an optional YAML file and the OS keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/oracle"
	"github.com/julianstephens/daylog/internal/storage"
	"github.com/julianstephens/daylog/internal/utils"
)

// OracleConfig selects the classification backend.
type OracleConfig struct {
	Provider     constants.OracleProvider `yaml:"provider"`
	Model        string                   `yaml:"model"`
	BaseURL      string                   `yaml:"base_url"`
	Timeout      time.Duration            `yaml:"timeout"`
	OpenAIAPIKey string                   `yaml:"openai_api_key"`
	GeminiAPIKey string                   `yaml:"gemini_api_key"`
}

type Config struct {
	ConfigDir                string       `yaml:"-"`
	DatabaseURL              string       `yaml:"database_url"`
	AllowEmbeddedCredentials bool         `yaml:"allow_embedded_credentials"`
	AdminEmail               string       `yaml:"admin_email"`
	ListenAddr               string       `yaml:"listen_addr"`
	BaseURL                  string       `yaml:"base_url"`
	GoogleClientID           string       `yaml:"google_client_id"`
	GoogleClientSecret       string       `yaml:"google_client_secret"`
	SessionSecret            string       `yaml:"session_secret"`
	Timezone                 string       `yaml:"timezone"`
	Debug                    bool         `yaml:"debug"`
	Oracle                   OracleConfig `yaml:"oracle"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		ConfigDir:  utils.ExpandHome(constants.DefaultConfigDir),
		ListenAddr: constants.DefaultListenAddr,
		Timezone:   "Local",
		Oracle: OracleConfig{
			Timeout: constants.DefaultOracleTimeout,
		},
	}
}

// LoadFile reads a YAML config file over the defaults. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(utils.ExpandHome(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Apply overlays every non-zero field of o onto c.
func (c *Config) Apply(o Config) {
	setString(&c.ConfigDir, o.ConfigDir)
	setString(&c.DatabaseURL, o.DatabaseURL)
	setString(&c.AdminEmail, o.AdminEmail)
	setString(&c.ListenAddr, o.ListenAddr)
	setString(&c.BaseURL, o.BaseURL)
	setString(&c.GoogleClientID, o.GoogleClientID)
	setString(&c.GoogleClientSecret, o.GoogleClientSecret)
	setString(&c.SessionSecret, o.SessionSecret)
	setString(&c.Timezone, o.Timezone)
	setString(&c.Oracle.Model, o.Oracle.Model)
	setString(&c.Oracle.BaseURL, o.Oracle.BaseURL)
	setString(&c.Oracle.OpenAIAPIKey, o.Oracle.OpenAIAPIKey)
	setString(&c.Oracle.GeminiAPIKey, o.Oracle.GeminiAPIKey)
	if o.Oracle.Provider != "" {
		c.Oracle.Provider = o.Oracle.Provider
	}
	if o.Oracle.Timeout > 0 {
		c.Oracle.Timeout = o.Oracle.Timeout
	}
	if o.Debug {
		c.Debug = true
	}
	if o.AllowEmbeddedCredentials {
		c.AllowEmbeddedCredentials = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// FillSecrets fills secrets still empty from lookup, typically keyring.Lookup.
func (c *Config) FillSecrets(lookup func(name string) string) {
	fill := func(dst *string, name string) {
		if *dst == "" {
			*dst = lookup(name)
		}
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = lookup(constants.KeyringDatabaseURL)
		// the keyring is an accepted home for a password-bearing URL
		if c.DatabaseURL != "" {
			c.AllowEmbeddedCredentials = true
		}
	}
	fill(&c.SessionSecret, constants.KeyringSessionSecret)
	fill(&c.GoogleClientSecret, constants.KeyringGoogleClientSecret)
	fill(&c.Oracle.OpenAIAPIKey, constants.KeyringOpenAIKey)
	fill(&c.Oracle.GeminiAPIKey, constants.KeyringGeminiKey)
}

// DatabaseTarget is the PostgreSQL URL or SQLite path to open. It defaults to
// a SQLite file in the config directory.
func (c Config) DatabaseTarget() string {
	if c.DatabaseURL == "" {
		return filepath.Join(utils.ExpandHome(c.ConfigDir), constants.DefaultDBName)
	}
	if storage.IsPostgresURL(c.DatabaseURL) {
		return storage.NormalizeURL(c.DatabaseURL)
	}
	return utils.ExpandHome(c.DatabaseURL)
}

// OracleProvider resolves the effective provider: an explicit choice wins,
// otherwise whichever API key is present, OpenAI first.
func (c Config) OracleProvider() constants.OracleProvider {
	switch {
	case c.Oracle.Provider != "":
		return c.Oracle.Provider
	case c.Oracle.OpenAIAPIKey != "":
		return constants.OracleOpenAI
	case c.Oracle.GeminiAPIKey != "":
		return constants.OracleGemini
	default:
		return constants.OracleNone
	}
}

// OracleSettings converts the config into oracle.Config.
func (c Config) OracleSettings() oracle.Config {
	provider := c.OracleProvider()
	key := c.Oracle.OpenAIAPIKey
	if provider == constants.OracleGemini {
		key = c.Oracle.GeminiAPIKey
	}
	return oracle.Config{
		Provider: provider,
		APIKey:   key,
		Model:    c.Oracle.Model,
		BaseURL:  c.Oracle.BaseURL,
		Timeout:  c.Oracle.Timeout,
	}
}

// Location loads the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	var errs []error

	switch c.Oracle.Provider {
	case "", constants.OracleOpenAI, constants.OracleGemini, constants.OracleNone:
	default:
		errs = append(errs, fmt.Errorf("unknown oracle provider %q (want openai, gemini or none)", c.Oracle.Provider))
	}
	if c.Oracle.Timeout < 0 {
		errs = append(errs, fmt.Errorf("oracle timeout must not be negative"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if storage.IsPostgresURL(c.DatabaseURL) && !c.AllowEmbeddedCredentials && storage.HasEmbeddedCredentials(c.DatabaseURL) {
		errs = append(errs, fmt.Errorf("database URL embeds a password; store it with 'daylog keyring set %s' or set allow_embedded_credentials", constants.KeyringDatabaseURL))
	}
	if c.AdminEmail != "" && !strings.Contains(c.AdminEmail, "@") {
		errs = append(errs, fmt.Errorf("admin email %q is not an email address", c.AdminEmail))
	}

	return errors.Join(errs...)
}

// ServerReady reports what is missing for the web server to run the OAuth flow.
func (c Config) ServerReady() error {
	var missing []string
	if c.GoogleClientID == "" {
		missing = append(missing, "google_client_id")
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, "google_client_secret")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "session_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("server configuration incomplete, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}
