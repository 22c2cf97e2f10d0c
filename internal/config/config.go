package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "BOARD"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Lock     LockConfig     `mapstructure:"lock"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // debug / release / test
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql / sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

// LockConfig 帖子级串行化锁
type LockConfig struct {
	Backend string        `mapstructure:"backend"` // redis / local
	TTL     time.Duration `mapstructure:"ttl"`
	Wait    time.Duration `mapstructure:"wait"`
}

type JWTConfig struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console / json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "user:password@tcp(127.0.0.1:3306)/board?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 2*time.Second)
	v.SetDefault("redis.write_timeout", 2*time.Second)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("lock.backend", "redis")
	v.SetDefault("lock.ttl", 3*time.Second)
	v.SetDefault("lock.wait", 2*time.Second)

	v.SetDefault("jwt.access_secret", "")
	v.SetDefault("jwt.refresh_secret", "")
	v.SetDefault("jwt.access_ttl", 30*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load 读取配置：默认值 < config.yaml < 环境变量（BOARD_ 前缀，如 BOARD_DATABASE_DSN）
// path 为空时在当前目录和 ./config 下查找 config.yaml
func Load(path string) (*Config, error) {
	// .env 不存在不算错误
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("database.driver must be mysql or sqlite, got %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		problems = append(problems, "database.dsn is required")
	}

	switch c.Lock.Backend {
	case "redis":
		if c.Redis.Addr == "" {
			problems = append(problems, "redis.addr is required when lock.backend=redis")
		}
		if c.Redis.DialTimeout <= 0 || c.Redis.PoolSize <= 0 {
			problems = append(problems, "redis.dial_timeout and redis.pool_size must be positive")
		}
	case "local":
	default:
		problems = append(problems, fmt.Sprintf("lock.backend must be redis or local, got %q", c.Lock.Backend))
	}
	if c.Lock.TTL <= 0 || c.Lock.Wait <= 0 {
		problems = append(problems, "lock.ttl and lock.wait must be positive")
	}

	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		problems = append(problems, "jwt.access_secret and jwt.refresh_secret are required")
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format must be console or json, got %q", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
