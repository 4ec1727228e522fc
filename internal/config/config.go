package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"local"`
	RateSource `yaml:"rate_source"`
	StateDB    `yaml:"state_db"`
	Kafka      `yaml:"kafka"`
	Webhook    `yaml:"webhook"`
	LogConfig  `yaml:"log_config"`
	Defaults   `yaml:"defaults"`
}

type RateSource struct {
	Endpoint        string        `yaml:"endpoint" env:"RATE_SOURCE_ENDPOINT"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env-default:"5m"`
	Timeout         time.Duration `yaml:"timeout" env-default:"10s"`
	Retries         int           `yaml:"retries" env-default:"3"`
}

type StateDB struct {
	Dsn string `yaml:"dsn" env:"STATE_DB_DSN"`
}

type Kafka struct {
	Enabled bool   `yaml:"enabled" env-default:"false"`
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
	Topic   string `yaml:"topic" env-default:"church-state-events"`
}

type Webhook struct {
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"text"`
}

type Defaults struct {
	Language     string `yaml:"language" env-default:"en"`
	BaseCurrency string `yaml:"base_currency" env-default:"USD"`
	Theme        string `yaml:"theme" env-default:"system"`
}

func MustLoad() *AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	configPath := os.Getenv("CHURCH_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("CHURCH_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg AppConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
