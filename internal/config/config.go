// Package config загрузка конфигурации сервиса из TOML-файла
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config корневая конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Pricing  PricingConfig  `toml:"pricing"`
	Slots    SlotsConfig    `toml:"slots"`
	Realtime RealtimeConfig `toml:"realtime"`
}

// ServerConfig настройки HTTP-сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

// DatabaseConfig настройки подключения к Postgres
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// FeeType тип платформенного сбора
type FeeType string

const (
	FeePercent FeeType = "PERCENT"
	FeeFixed   FeeType = "FIXED"
)

// PricingConfig настройки платформенного сбора
// Сбор добавляется к стоимости бронирования поверх цены игры
type PricingConfig struct {
	FeeType  FeeType `toml:"fee_type"` // PERCENT или FIXED
	FeeValue float64 `toml:"fee_value"`
	Currency string  `toml:"currency"`
}

// Validate проверяет корректность настроек сбора
func (p PricingConfig) Validate() error {
	switch p.FeeType {
	case FeePercent, FeeFixed:
	default:
		return fmt.Errorf("config: unknown fee_type %q (expected PERCENT or FIXED)", p.FeeType)
	}
	if p.FeeValue < 0 {
		return fmt.Errorf("config: fee_value must not be negative")
	}
	return nil
}

// Apply возвращает сумму сбора для указанной базовой стоимости
func (p PricingConfig) Apply(subtotal float64) float64 {
	if p.FeeType == FeePercent {
		return subtotal * p.FeeValue / 100
	}
	return p.FeeValue
}

// SlotsConfig настройки генерации слотов
type SlotsConfig struct {
	Timezone             string `toml:"timezone"`
	HorizonDays          int    `toml:"horizon_days"`           // на сколько дней вперёд поддерживать слоты
	HorizonCheckInterval int    `toml:"horizon_check_interval"` // секунды между проверками горизонта
	TransitionInterval   int    `toml:"transition_interval"`    // секунды между проходами автопереходов статусов
}

// RealtimeConfig настройки клиента уведомлений о доступности
type RealtimeConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// Load читает и валидирует конфигурацию из TOML-файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Pricing.Validate(); err != nil {
		return nil, err
	}
	if cfg.Slots.Timezone == "" {
		cfg.Slots.Timezone = "UTC"
	}
	if cfg.Slots.HorizonDays <= 0 {
		cfg.Slots.HorizonDays = 7
	}
	return &cfg, nil
}
