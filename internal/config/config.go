package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"

	MediaLocal = "local"
	MediaS3    = "s3"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Database *DatabaseConfig `mapstructure:"database"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	SQLite   *SQLiteConfig   `mapstructure:"sqlite"`
	Media    *MediaConfig    `mapstructure:"media"`
	Caption  *CaptionConfig  `mapstructure:"caption"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Log      *LogConfig      `mapstructure:"log"`

	v *viper.Viper
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	MaxUploadBytes     int64    `mapstructure:"max_upload_bytes"`
	Version            string   `mapstructure:"version"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	SlowQuery    time.Duration `mapstructure:"slow_query"`
	Seed         bool          `mapstructure:"seed"`
}

type PostgresConfig struct {
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	DB          string        `mapstructure:"db"`
	SSLMode     string        `mapstructure:"sslmode"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

type SQLiteConfig struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

type MediaConfig struct {
	Driver    string `mapstructure:"driver"`
	Root      string `mapstructure:"root"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type CaptionConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Prompt   string        `mapstructure:"prompt"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Fallback string        `mapstructure:"fallback"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	CaptionTTL time.Duration `mapstructure:"caption_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

const defaultCaptionPrompt = `이 이미지를 분석하여 다음 정보를 포함한 자연스러운 설명을 생성해주세요:
1. 장소 유형 (예: 놀이터, 카페, 공원, 골목, 건물 등)
2. 주요 요소 (예: 회전무대, 벤치, 나무, 벽화 등)
3. 분위기 (예: 한적한, 활발한, 고즈넉한, 아름다운 등)
설명은 한국어로 작성하고, 자연스러운 문장으로 구성해주세요.`

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8000")
	v.SetDefault("api.base_url", "localhost:8000")
	v.SetDefault("api.allowed_cors_domains", []string{"*"})
	v.SetDefault("api.max_upload_bytes", 10<<20)
	v.SetDefault("api.version", "1.0.0")

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("database.driver", DatabaseSQLite)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.slow_query", 200*time.Millisecond)
	v.SetDefault("database.seed", false)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "loca")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.lock_timeout", 30*time.Second)

	v.SetDefault("sqlite.path", "loca.db")
	v.SetDefault("sqlite.busy_timeout", 30*time.Second)

	v.SetDefault("media.driver", MediaLocal)
	v.SetDefault("media.root", "uploads")
	v.SetDefault("media.bucket", "")
	v.SetDefault("media.region", "ap-northeast-2")
	v.SetDefault("media.endpoint", "")
	v.SetDefault("media.access_key", "")
	v.SetDefault("media.secret_key", "")

	v.SetDefault("caption.api_key", "")

	v.SetDefault("caption.model", "gemini-1.5-flash")
	v.SetDefault("caption.prompt", defaultCaptionPrompt)
	v.SetDefault("caption.timeout", 30*time.Second)
	v.SetDefault("caption.fallback", "이미지 분석 중 오류가 발생했습니다.")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.caption_ttl", 24*time.Hour)

	v.SetDefault("log.level", "info")
}

// Load reads the YAML file at configPath. Environment variables override any
// key that has a default or appears in the file, with dots replaced by
// underscores (API_PORT, POSTGRES_PASSWORD, ...).
func Load(configPath string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	if err = conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// Watch calls onLogLevel whenever the config file is rewritten.
func (c *AppConfig) Watch(onLogLevel func(level string)) {
	if c.v == nil {
		return
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		if level := c.v.GetString("log.level"); level != "" {
			onLogLevel(level)
		}
	})
	c.v.WatchConfig()
}

func unmarshal(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{v: v}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	return conf, nil
}

func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case DatabasePostgres, DatabaseSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Media.Driver {
	case MediaLocal:
		if c.Media.Root == "" {
			return fmt.Errorf("media.root is required for the local driver")
		}
	case MediaS3:
		if c.Media.Bucket == "" {
			return fmt.Errorf("media.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown media driver %q", c.Media.Driver)
	}

	if c.API.MaxUploadBytes <= 0 {
		return fmt.Errorf("api.max_upload_bytes must be positive")
	}

	return nil
}
