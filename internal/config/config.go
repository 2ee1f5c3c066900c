package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Env             string `yaml:"env"`
	ShortCodeLength int    `yaml:"short_code_length"`
	BaseURL         string `yaml:"base_url"`
	Storage         string `yaml:"storage"`
	HTTPServer      `yaml:"http_server"`
	Postgres        `yaml:"postgres"`
	Auth            `yaml:"auth"`
	Cache           `yaml:"cache"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8005,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User              string        `yaml:"user"`
	Password          string        `yaml:"password"`
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	DB                string        `yaml:"db"`
	SSLMode           string        `yaml:"sslmode"`
	MigrationsPath    string        `yaml:"migrations_path"`
	ConnMaxIdleTime   time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime   time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns      int           `yaml:"max_idle_conns"`
	MaxOpenConns      int           `yaml:"max_open_conns"`
	ConnectAttempts   int           `yaml:"connect_attempts"`
	ConnectRetryDelay time.Duration `yaml:"connect_retry_delay"`
}

var defaultPostgres = Postgres{
	Host:              "localhost",
	Port:              5432,
	SSLMode:           "disable",
	MigrationsPath:    "file://migrations",
	ConnMaxIdleTime:   5 * time.Minute,
	ConnMaxLifetime:   30 * time.Minute,
	MaxIdleConns:      5,
	MaxOpenConns:      25,
	ConnectAttempts:   5,
	ConnectRetryDelay: 2 * time.Second,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

var defaultAuth = Auth{
	Issuer:   "url-shortener",
	TokenTTL: time.Hour,
}

type Cache struct {
	Enabled  bool          `yaml:"enabled"`
	MaxItems int64         `yaml:"max_items"`
	TTL      time.Duration `yaml:"ttl"`
}

var defaultCache = Cache{
	Enabled:  true,
	MaxItems: 10000,
	TTL:      5 * time.Minute,
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.ShortCodeLength = 7
	cfg.BaseURL = "http://localhost:8005"
	cfg.Storage = StoragePostgres
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Auth = defaultAuth
	cfg.Cache = defaultCache
}

// applyEnv overrides secrets and connection settings from the environment.
func applyEnv(cfg *Config) error {
	overrides := map[string]*string{
		"POSTGRES_USERNAME": &cfg.Postgres.User,
		"POSTGRES_PASSWORD": &cfg.Postgres.Password,
		"POSTGRES_HOST":     &cfg.Postgres.Host,
		"POSTGRES_DB":       &cfg.Postgres.DB,
		"JWT_SECRET":        &cfg.Auth.JWTSecret,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("POSTGRES_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POSTGRES_PORT %q: %w", v, err)
		}
		cfg.Postgres.Port = port
	}

	return nil
}

func (cfg *Config) validate() error {
	switch cfg.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	if cfg.ShortCodeLength <= 0 {
		return fmt.Errorf("short_code_length must be positive, got %d", cfg.ShortCodeLength)
	}

	return nil
}
