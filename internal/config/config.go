package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/v0xg/formfill/internal/reconcile"
	"github.com/v0xg/formfill/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. FORMFILL_STORE_PATH
const EnvPrefix = "FORMFILL"

// Config is the full runtime configuration
type Config struct {
	URL     string        `mapstructure:"url"`
	DryRun  bool          `mapstructure:"dry_run"`
	Store   StoreConfig   `mapstructure:"store"`
	Prompt  PromptConfig  `mapstructure:"prompt"`
	Browser BrowserConfig `mapstructure:"browser"`
	AI      AIConfig      `mapstructure:"ai"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

type StoreConfig struct {
	Path  string `mapstructure:"path"`
	Scope string `mapstructure:"scope"` // name | form
}

type PromptConfig struct {
	Policy string `mapstructure:"policy"` // missing | empty-store
}

type BrowserConfig struct {
	Bin             string        `mapstructure:"bin"`
	ProfileDir      string        `mapstructure:"profile_dir"`
	Headless        bool          `mapstructure:"headless"`
	KeepOpen        bool          `mapstructure:"keep_open"` // wait for Enter before closing a visible browser
	Width           int           `mapstructure:"width"`
	Height          int           `mapstructure:"height"`
	FormTimeout     time.Duration `mapstructure:"form_timeout"`
	FieldTimeout    time.Duration `mapstructure:"field_timeout"` // bound on one element interaction
	SettleDelay     time.Duration `mapstructure:"settle_delay"`
	Screenshot      string        `mapstructure:"screenshot"`
	ScreenshotWidth uint          `mapstructure:"screenshot_width"`
}

type AIConfig struct {
	Provider string `mapstructure:"provider"` // empty disables suggestions
	Model    string `mapstructure:"model"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // console | json
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("url", "https://www.instagram.com/")
	v.SetDefault("dry_run", false)

	v.SetDefault("store.path", store.DefaultPath)
	v.SetDefault("store.scope", "name")

	v.SetDefault("prompt.policy", "missing")

	// Every key needs a default so AutomaticEnv overrides reach Unmarshal.
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.profile_dir", "")
	v.SetDefault("browser.screenshot", "")
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.keep_open", true)
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 720)
	v.SetDefault("browser.form_timeout", 10*time.Second)
	v.SetDefault("browser.field_timeout", 5*time.Second)
	v.SetDefault("browser.settle_delay", 2*time.Second)
	v.SetDefault("browser.screenshot_width", 800)

	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.model", "")

	v.SetDefault("logger.file", "")
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
}

// NewViper returns a viper instance with defaults and FORMFILL_ env overrides
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads cfgFile, or formfill.yaml from the working directory when
// cfgFile is empty, and decodes the result. A missing default file is fine.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("formfill")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be expressed by types alone
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("config: url is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("config: store.path is required")
	}
	if _, err := store.ParseScope(c.Store.Scope); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := reconcile.ParsePolicy(c.Prompt.Policy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Browser.FormTimeout <= 0 {
		return fmt.Errorf("config: browser.form_timeout must be positive")
	}
	if c.Browser.FieldTimeout <= 0 {
		return fmt.Errorf("config: browser.field_timeout must be positive")
	}
	if c.Browser.SettleDelay < 0 {
		return fmt.Errorf("config: browser.settle_delay must not be negative")
	}
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown logger.format %q (supported: console, json)", c.Logger.Format)
	}
	return nil
}

// Scope returns the parsed store scope; Validate must have passed
func (c *Config) Scope() store.Scope {
	sc, _ := store.ParseScope(c.Store.Scope)
	return sc
}

// Policy returns the parsed prompt policy; Validate must have passed
func (c *Config) Policy() reconcile.Policy {
	p, _ := reconcile.ParsePolicy(c.Prompt.Policy)
	return p
}
