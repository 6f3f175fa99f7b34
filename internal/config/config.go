package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"

	FeedNative = "native"
	FeedMemory = "memory"
	FeedRedis  = "redis"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	Seed       bool       `yaml:"seed" env:"SEED" env-default:"false"`
	Storage    Storage    `yaml:"storage"`
	Database   Database   `yaml:"database"`
	Feed       Feed       `yaml:"feed"`
	Dispatcher Dispatcher `yaml:"dispatcher"`
	Auth       Auth       `yaml:"auth"`
	HTTPServer HTTPServer `yaml:"http_server"`
}

type Storage struct {
	Driver     string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"./storage/registrar.db"`
}

type Database struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-default:"events_db"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

type Feed struct {
	Driver               string        `yaml:"driver" env:"FEED_DRIVER" env-default:"native"`
	Buffer               int           `yaml:"buffer" env:"FEED_BUFFER" env-default:"64"`
	RedisAddr            string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisChannel         string        `yaml:"redis_channel" env:"REDIS_CHANNEL" env-default:"registrar:changes"`
	MinReconnectInterval time.Duration `yaml:"min_reconnect_interval" env-default:"1s"`
	MaxReconnectInterval time.Duration `yaml:"max_reconnect_interval" env-default:"1m"`
}

type Dispatcher struct {
	ResyncInterval time.Duration `yaml:"resync_interval" env:"DISPATCHER_RESYNC_INTERVAL" env-default:"1m"`
}

type Auth struct {
	// Secret signs bearer tokens. When empty, the X-User-ID header identifies the actor.
	Secret string `yaml:"secret" env:"AUTH_SECRET"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout        time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

// DSN builds a libpq key/value connection string. Every value is quoted so
// that an empty password or one containing spaces keeps its place.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quote(d.Host),
		d.Port,
		quote(d.User),
		quote(d.Password),
		quote(d.DBName),
		quote(d.SSLMode),
	)
}

func quote(value string) string {
	return "'" + dsnEscaper.Replace(value) + "'"
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageSQLite, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Feed.Driver {
	case FeedNative, FeedMemory, FeedRedis:
	default:
		return fmt.Errorf("unknown feed driver %q", c.Feed.Driver)
	}

	// Without a secret the actor is whoever the request claims to be.
	if c.Env != EnvLocal && c.Auth.Secret == "" {
		return fmt.Errorf("auth secret is required in %s environment", c.Env)
	}

	return nil
}

// fetchConfigPath reads the config path from the --config flag or the CONFIG_PATH env.
// Priority: flag > env > default.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
