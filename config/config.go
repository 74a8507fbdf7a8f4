package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix 环境变量前缀，例如 TECHTRENDS_SERVER_PORT
const EnvPrefix = "TECHTRENDS"

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Swagger   SwaggerConfig   `mapstructure:"swagger"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig 嵌入式数据库配置
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig 日志配置：文件、stdout、stderr 三路按级别分流
type LogConfig struct {
	Level       string `mapstructure:"level"` // 文件 sink 的最低级别
	File        string `mapstructure:"file"`  // 为空则不写文件
	StdoutLevel string `mapstructure:"stdout_level"`
	StderrLevel string `mapstructure:"stderr_level"`
	Format      string `mapstructure:"format"` // console, json
}

// RateLimitConfig 发帖限流配置，RequestsPerSecond 为 0 表示关闭
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Enabled 是否启用限流
func (r RateLimitConfig) Enabled() bool { return r.RequestsPerSecond > 0 }

// SentryConfig 错误上报配置
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// TracingConfig OpenTelemetry 链路追踪配置
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// SwaggerConfig 接口文档配置
type SwaggerConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3111)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.path", "database.db")

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.file", "app.log")
	v.SetDefault("log.stdout_level", "info")
	v.SetDefault("log.stderr_level", "error")
	v.SetDefault("log.format", "console")

	v.SetDefault("ratelimit.requests_per_second", 0)
	v.SetDefault("ratelimit.burst", 5)

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "techtrends")
	v.SetDefault("tracing.insecure", true)

	v.SetDefault("swagger.enabled", true)
}

// Load 加载配置：默认值 -> config.yaml（可选）-> 环境变量
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		v.SetConfigFile(p)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置合法性
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server.mode %q", c.Server.Mode)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path is required")
	}
	for key, lvl := range map[string]string{
		"log.level":        c.Log.Level,
		"log.stdout_level": c.Log.StdoutLevel,
		"log.stderr_level": c.Log.StderrLevel,
	} {
		if _, err := zapcore.ParseLevel(lvl); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, lvl, err)
		}
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid ratelimit.requests_per_second %v", c.RateLimit.RequestsPerSecond)
	}
	return nil
}
