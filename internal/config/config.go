// Package config loads service settings from defaults, a YAML file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultDBPath      = "emailgenx.db"
	defaultHost        = "127.0.0.1"
	defaultPort        = "8000"
	defaultHTTPTimeout = 30 * time.Second
	defaultMailTMURL   = "https://api.mail.tm"
	defaultExchange    = "emailgenx.events"
)

// ErrMissingTelegramToken aborts startup of the chat listener.
var ErrMissingTelegramToken = errors.New("telegram bot token is missing: set TELEGRAM_BOT_TOKEN or telegram.token")

// Config is the resolved service configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	MailTM   MailTMConfig   `yaml:"mailtm"`
	AMQP     AMQPConfig     `yaml:"amqp"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Host          string `yaml:"host"`
	Port          string `yaml:"port"`
	AdminPassword string `yaml:"admin_password"`
}

type MailTMConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"-"`
	// RawTimeout holds the YAML duration string, e.g. "30s".
	RawTimeout string `yaml:"timeout"`
}

// AMQPConfig enables lifecycle event publishing when URL is set.
type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: defaultDBPath},
		Server:   ServerConfig{Host: defaultHost, Port: defaultPort},
		MailTM:   MailTMConfig{BaseURL: defaultMailTMURL, Timeout: defaultHTTPTimeout},
		AMQP:     AMQPConfig{Exchange: defaultExchange},
	}
}

// Load resolves configuration. configPath may be empty, in which case
// EMAILGENX_CONFIG and the standard locations are tried. envFile is loaded
// into the process environment first if it exists; variables already set win.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %q: %w", envFile, err)
		}
	}

	cfg := Default()

	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	if raw := strings.TrimSpace(c.MailTM.RawTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid mailtm.timeout %q: %w", raw, err)
		}
		c.MailTM.Timeout = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	setFromEnv(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	setFromEnv(&c.Database.Path, "EMAILGENX_DB")
	setFromEnv(&c.Server.Host, "HOST")
	setFromEnv(&c.Server.Port, "PORT")
	setFromEnv(&c.Server.AdminPassword, "EMAILGENX_ADMIN_PASSWORD")
	setFromEnv(&c.MailTM.BaseURL, "MAILTM_BASE_URL")
	setFromEnv(&c.AMQP.URL, "EMAILGENX_AMQP_URL")
	setFromEnv(&c.AMQP.Exchange, "EMAILGENX_AMQP_EXCHANGE")

	if raw := strings.TrimSpace(os.Getenv("EMAILGENX_HTTP_TIMEOUT")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid EMAILGENX_HTTP_TIMEOUT %q: %w", raw, err)
		}
		c.MailTM.Timeout = d
	}
	return nil
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// ValidateBot reports settings the chat listener cannot start without.
func (c *Config) ValidateBot() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return ErrMissingTelegramToken
	}
	return nil
}

func resolveConfigPath(explicit string) (string, error) {
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv("EMAILGENX_CONFIG"))
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %q: %w", explicit, err)
		}
		return explicit, nil
	}

	candidates := []string{
		"config/emailgenx.yaml",
		"emailgenx.yaml",
		"/etc/emailgenx/emailgenx.yaml",
	}
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		candidates = append(candidates, filepath.Join(homeDir, ".config", "emailgenx", "emailgenx.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// SetAddr overrides the HTTP listener from a host:port string.
func (c *Config) SetAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if host != "" {
		c.Server.Host = host
	}
	c.Server.Port = port
	return nil
}
