package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	defaultFileName = ".storefront.yaml"
	envPrefix       = "STOREFRONT"

	// PolicyAssumeNewUser sends the user to signup when the existence check is unavailable.
	PolicyAssumeNewUser = "assume_new_user"
	// PolicyFail surfaces the existence check failure instead.
	PolicyFail = "fail"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Login    LoginConfig    `yaml:"login" mapstructure:"login"`
	Format   FormatConfig   `yaml:"format" mapstructure:"format"`
	Checkout CheckoutConfig `yaml:"checkout" mapstructure:"checkout"`
}

// ServerConfig contains gateway connection settings
type ServerConfig struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Timeout string `yaml:"timeout" mapstructure:"timeout"`
}

// StorageConfig points at the local key/value file
type StorageConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LoginConfig contains OTP login settings
type LoginConfig struct {
	ResendSeconds             int    `yaml:"resend_seconds" mapstructure:"resend_seconds"`
	OTPLength                 int    `yaml:"otp_length" mapstructure:"otp_length"`
	ExistenceCheckUnavailable string `yaml:"existence_check_unavailable" mapstructure:"existence_check_unavailable"`
}

// FormatConfig contains output formatting settings
type FormatConfig struct {
	Default string `yaml:"default" mapstructure:"default"`
	Colors  bool   `yaml:"colors" mapstructure:"colors"`
}

// CheckoutConfig contains order summary settings
type CheckoutConfig struct {
	ConvenienceFee float64 `yaml:"convenience_fee" mapstructure:"convenience_fee"`
}

var (
	globalConfig *Config
	configPath   string
	debug        bool
	outputFormat string
)

// Initialize loads the configuration from file, writing a default one first
// when none exists.
func Initialize(configFile string) error {
	path, err := resolvePath(configFile)
	if err != nil {
		return err
	}

	setDefaults()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := createDefaultConfig(path); err != nil {
			return fmt.Errorf("could not create default config: %w", err)
		}
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("could not unmarshal config: %w", err)
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath(filepath.Dir(path))
	}

	globalConfig = cfg
	configPath = path
	return nil
}

func resolvePath(configFile string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(home, defaultFileName), nil
}

func defaultStoragePath(dir string) string {
	return filepath.Join(dir, ".storefront", "storage.yaml")
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.url", "http://localhost:8000")
	viper.SetDefault("server.timeout", "30s")
	viper.SetDefault("storage.path", "")
	viper.SetDefault("login.resend_seconds", 54)
	viper.SetDefault("login.otp_length", 6)
	viper.SetDefault("login.existence_check_unavailable", PolicyAssumeNewUser)
	viper.SetDefault("format.default", "table")
	viper.SetDefault("format.colors", true)
	viper.SetDefault("checkout.convenience_fee", 29)
}

// Default returns the configuration written for first-time users.
func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:     "http://localhost:8000",
			Timeout: "30s",
		},
		Login: LoginConfig{
			ResendSeconds:             54,
			OTPLength:                 6,
			ExistenceCheckUnavailable: PolicyAssumeNewUser,
		},
		Format: FormatConfig{
			Default: "table",
			Colors:  true,
		},
		Checkout: CheckoutConfig{
			ConvenienceFee: 29,
		},
	}
}

// createDefaultConfig creates a default configuration file
func createDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg := Default()
		globalConfig = &cfg
	}
	return globalConfig
}

// Path returns the file the configuration was loaded from.
func Path() string {
	return configPath
}

// Set stores a single dotted key and writes the file back.
func Set(key, value string) error {
	if globalConfig == nil || configPath == "" {
		return fmt.Errorf("configuration not initialized")
	}
	if !viper.IsSet(key) {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	viper.Set(key, value)

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = globalConfig.Storage.Path
	}
	globalConfig = cfg

	return Save()
}

// Save saves the current configuration to file
func Save() error {
	if globalConfig == nil || configPath == "" {
		return fmt.Errorf("no configuration to save")
	}

	data, err := yaml.Marshal(globalConfig)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o600)
}

// Reset drops the loaded configuration and viper state.
func Reset() {
	viper.Reset()
	globalConfig = nil
	configPath = ""
	debug = false
	outputFormat = ""
}

// Timeout parses server.timeout, falling back to 30s.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// SetServerURL overrides the gateway for the current run only.
func SetServerURL(url string) {
	Get().Server.URL = strings.TrimRight(url, "/")
}

// SetDebug sets the debug mode
func SetDebug(enabled bool) {
	debug = enabled
}

// IsDebug returns whether debug mode is enabled
func IsDebug() bool {
	return debug
}

// SetOutputFormat sets the output format
func SetOutputFormat(format string) {
	outputFormat = format
}

// GetOutputFormat returns the current output format
func GetOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	if globalConfig != nil && globalConfig.Format.Default != "" {
		return globalConfig.Format.Default
	}
	return "table"
}
