// Initializing common application configuration
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Email     EmailConfig     `mapstructure:"email"`
	WhatsApp  WhatsAppConfig  `mapstructure:"whatsapp"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Slots     SlotsConfig     `mapstructure:"slots"`
	Events    EventsConfig    `mapstructure:"events"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Business  BusinessConfig  `mapstructure:"business"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	History   HistoryConfig   `mapstructure:"history"`
}

type ServerConfig struct {
	AppVersion     string        `mapstructure:"app_version"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	Timeout        time.Duration `mapstructure:"timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout int           `mapstructure:"request_timeout"` // seconds
	Env            string        `mapstructure:"environment"`
	Mode           string        `mapstructure:"mode"`
	LogLevel       string        `mapstructure:"log_level"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type QueueConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Prefix     string        `mapstructure:"prefix"`
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

type EmailConfig struct {
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Enabled  bool   `mapstructure:"enabled"`
}

type WhatsAppConfig struct {
	Token         string        `mapstructure:"token"`
	PhoneNumberID string        `mapstructure:"phone_number_id"`
	VerifyToken   string        `mapstructure:"verify_token"`
	APIVersion    string        `mapstructure:"api_version"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
}

type AgentConfig struct {
	MaxRounds    int           `mapstructure:"max_rounds"`
	ModelTimeout time.Duration `mapstructure:"model_timeout"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	Location     string        `mapstructure:"location"`
}

type SlotsConfig struct {
	Grid string `mapstructure:"grid"` // spaced | hourly
}

type EventsConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

type RabbitMQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// BusinessConfig holds fallbacks for the business keys stored in the configuracion table.
type BusinessConfig struct {
	Name    string `mapstructure:"name"`
	Kind    string `mapstructure:"kind"`
	Address string `mapstructure:"address"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

type HistoryConfig struct {
	ContextMessages int           `mapstructure:"context_messages"`
	KeepMessages    int           `mapstructure:"keep_messages"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

func LoadConfig() (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Cannot read .env file: %v", err)
	}

	viperInstance := viper.New()
	setDefaults(viperInstance)

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	if err := viperInstance.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		logrus.Warn("config.yaml not found, using defaults and environment")
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.request_timeout", 60)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "padelpro")
	v.SetDefault("database.password", "padelpro123")
	v.SetDefault("database.dbname", "padelpro")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.pool_timeout", 4*time.Second)

	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.prefix", "padelpro")
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.base_delay", 5*time.Second)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.port", 587)

	v.SetDefault("whatsapp.verify_token", "padelpro_verify_token_2024")
	v.SetDefault("whatsapp.api_version", "v22.0")
	v.SetDefault("whatsapp.base_url", "https://graph.facebook.com")
	v.SetDefault("whatsapp.timeout", 15*time.Second)

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.7)

	v.SetDefault("agent.max_rounds", 5)
	v.SetDefault("agent.model_timeout", 30*time.Second)
	v.SetDefault("agent.session_ttl", 2*time.Hour)
	v.SetDefault("agent.location", "America/Argentina/Buenos_Aires")

	v.SetDefault("slots.grid", "spaced")

	v.SetDefault("events.rabbitmq.enabled", false)
	v.SetDefault("events.rabbitmq.exchange", "padelpro.reservas")
	v.SetDefault("events.kafka.enabled", false)
	v.SetDefault("events.kafka.topic", "padelpro-reservas")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.service_name", "padelpro")

	v.SetDefault("business.name", "Complejo de Padel")
	v.SetDefault("business.kind", "PadelPro")
	v.SetDefault("business.address", "69 entre 119 y 120")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.limit", 20)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("history.context_messages", 10)
	v.SetDefault("history.keep_messages", 50)
	v.SetDefault("history.sweep_interval", 30*time.Minute)
}
