// Package config содержит логику чтения конфигурации сервиса банка крови.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса банка крови.
type Config struct {
	RunAddress     string `env:"RUN_ADDRESS"`
	DatabaseURI    string `env:"DATABASE_URI"`
	RemoteEndpoint string `env:"REMOTE_ENDPOINT"`
	AuthSecret     string `env:"AUTH_SECRET"`
	PasswordScheme string `env:"PASSWORD_SCHEME"`

	AdminUsername string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string        `env:"ADMIN_PASSWORD" envDefault:"kues2024"`
	AdminEmail    string        `env:"ADMIN_EMAIL" envDefault:"admin@kuesbloodbank.org"`
	SyncInterval  time.Duration `env:"SYNC_INTERVAL" envDefault:"1s"`

	LoginRatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND" envDefault:"1"`
	LoginBurst         int     `env:"LOGIN_BURST" envDefault:"5"`
	// TrustedProxies перечисляет адреса прокси, чьему X-Forwarded-For можно верить.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envRemoteEndpoint := cfg.RemoteEndpoint
	envAuthSecret := cfg.AuthSecret
	envPasswordScheme := cfg.PasswordScheme

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI, in-memory store when empty")
	flag.StringVar(&cfg.RemoteEndpoint, "r", "", "remote sync endpoint")
	flag.StringVar(&cfg.AuthSecret, "s", "", "session signing secret")
	flag.StringVar(&cfg.PasswordScheme, "p", "plain", "password storage scheme: plain or bcrypt")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envRemoteEndpoint != "" {
		cfg.RemoteEndpoint = envRemoteEndpoint
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}
	if envPasswordScheme != "" {
		cfg.PasswordScheme = envPasswordScheme
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.SyncInterval <= 0 {
		return nil, fmt.Errorf("sync interval must be positive, got %s", cfg.SyncInterval)
	}

	return cfg, nil
}
