package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Skotchmaster/auth_service/internal/tokens"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"auth"`
	HTTPAddr    string `env:"HTTP_ADDR"    envDefault:":8001"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`

	DBDriver    string `env:"DB_DRIVER"    envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST"      envDefault:"localhost"`
	DBPort      string `env:"DB_PORT"      envDefault:"5432"`
	DBUser      string `env:"DB_USER"      envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"  envDefault:"postgres"`
	DBName      string `env:"DB_NAME"      envDefault:"postgres"`

	JWTSecret         string `env:"JWT_SECRET"`
	JWTAlgorithm      string `env:"JWT_ALGORITHM"`
	JWTIssuer         string `env:"JWT_ISSUER"                   envDefault:"auth-service"`
	AccessTTLMinutes  int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES"  envDefault:"120"`
	RefreshTTLMinutes int    `env:"REFRESH_TOKEN_EXPIRE_MINUTES" envDefault:"1440"`

	BcryptCost   int      `env:"BCRYPT_COST"   envDefault:"10"`
	CORSOrigins  []string `env:"CORS_ORIGINS"  envDefault:"*" envSeparator:","`
	CookieSecure bool     `env:"COOKIE_SECURE" envDefault:"true"`

	KafkaBrokers   []string `env:"KAFKA_BROKERS"    envSeparator:","`
	KafkaUserTopic string   `env:"KAFKA_USER_TOPIC" envDefault:"user_events"`

	AdminLogin    string `env:"ADMIN_LOGIN"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == DriverPostgres {
		cfg.DatabaseURL = cfg.postgresDSN()
	}

	return cfg, nil
}

// Validate reports configuration the service must not start with.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.JWTAlgorithm == "" {
		errs = append(errs, errors.New("JWT_ALGORITHM must be set"))
	} else if !tokens.SupportedAlgorithm(c.JWTAlgorithm) {
		errs = append(errs, fmt.Errorf("JWT_ALGORITHM %q is not supported", c.JWTAlgorithm))
	}
	if c.AccessTTLMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.RefreshTTLMinutes <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DBDriver))
	}
	if c.DatabaseURL == "" && c.DBDriver == DriverSQLite {
		errs = append(errs, errors.New("DATABASE_URL must be set for sqlite"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLMinutes) * time.Minute
}

func (c Config) BootstrapAdmin() bool {
	return c.AdminLogin != "" && c.AdminEmail != "" && c.AdminPassword != ""
}

func (c Config) postgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
