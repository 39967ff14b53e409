package config

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	App      AppConfig      `mapstructure:"app"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Offers   OffersConfig   `mapstructure:"offers"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // hours
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

// PricingConfig holds the subscription price tables. Keys are strings because
// viper lowercases map keys during unmarshal; Tables() converts them to ints.
type PricingConfig struct {
	PeriodPrices       map[string]int `mapstructure:"period_prices"`  // days -> kopeks
	TrafficPrices      map[string]int `mapstructure:"traffic_prices"` // GB -> kopeks per month
	DefaultDeviceLimit int            `mapstructure:"default_device_limit"`
	PricePerDevice     int            `mapstructure:"price_per_device"` // kopeks per month
}

// OffersConfig controls the discount-offer lifecycle defaults.
type OffersConfig struct {
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
	DefaultValidHours    int `mapstructure:"default_valid_hours"`
}

var GlobalConfig Config

// Validate rejects configurations the service cannot safely run with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if len(c.Pricing.PeriodPrices) == 0 {
		return errors.New("at least one period price must be configured")
	}
	for key := range c.Pricing.PeriodPrices {
		if _, err := strconv.Atoi(key); err != nil {
			return errors.New("period price keys must be day counts: " + key)
		}
	}
	for key := range c.Pricing.TrafficPrices {
		if _, err := strconv.Atoi(key); err != nil {
			return errors.New("traffic price keys must be GB counts: " + key)
		}
	}

	return nil
}

// LoadConfig reads config.<env>.yaml plus env overrides into GlobalConfig.
func LoadConfig() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	configName := "config"
	if env != "" && env != "dev" {
		configName = "config." + env
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("jwt.expire", 24)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("app.env", "dev")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("pricing.default_device_limit", 1)
	viper.SetDefault("pricing.price_per_device", 0)
	viper.SetDefault("offers.sweep_interval_minutes", 10)
	viper.SetDefault("offers.default_valid_hours", 24)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// Manual overrides for the values most commonly injected via environment.
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		GlobalConfig.JWT.Secret = jwtSecret
	}

	if err := GlobalConfig.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}
