package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	LogLevel        string        `mapstructure:"LOG_LEVEL" validate:"required,oneof=trace debug info warn error"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required"`
	GRPCAddr        string        `mapstructure:"GRPC_ADDR" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	StoreDriver   string `mapstructure:"STORE_DRIVER" validate:"required,oneof=mongo postgres memory"`
	MongoURI      string `mapstructure:"MONGODB_URI" validate:"required_if=StoreDriver mongo"`
	MongoDatabase string `mapstructure:"MONGODB_DATABASE" validate:"required_if=StoreDriver mongo"`
	DatabaseURL   string `mapstructure:"DATABASE_URL" validate:"required_if=StoreDriver postgres"`

	JWTSecret    string        `mapstructure:"JWT_SECRET" validate:"required,min=16"`
	JWTTTL       time.Duration `mapstructure:"JWT_TTL" validate:"required"`
	BcryptRounds int           `mapstructure:"BCRYPT_ROUNDS" validate:"gte=4,lte=31"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT" validate:"gte=1,lte=65535"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPass     string `mapstructure:"SMTP_PASS"`
	MailFrom     string `mapstructure:"MAIL_FROM" validate:"required,email"`
	AdminEmail   string `mapstructure:"ADMIN_EMAIL" validate:"omitempty,email"`
	ContactEmail string `mapstructure:"CONTACT_EMAIL" validate:"omitempty,email"`
	OrgName      string `mapstructure:"ORG_NAME" validate:"required"`

	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS" validate:"gt=0"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST" validate:"gte=1"`

	AssignmentStrategy string `mapstructure:"ASSIGNMENT_STRATEGY" validate:"required,oneof=first-active specialization"`
	DefaultLocation    string `mapstructure:"DEFAULT_LOCATION" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var keys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "GRPC_ADDR", "SHUTDOWN_TIMEOUT",
	"STORE_DRIVER", "MONGODB_URI", "MONGODB_DATABASE", "DATABASE_URL",
	"JWT_SECRET", "JWT_TTL", "BCRYPT_ROUNDS",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS",
	"MAIL_FROM", "ADMIN_EMAIL", "CONTACT_EMAIL", "ORG_NAME",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"ASSIGNMENT_STRATEGY", "DEFAULT_LOCATION",
}

// Load reads .env (if present) and the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":5000")
	v.SetDefault("GRPC_ADDR", ":50051")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "shrm-counseling")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BCRYPT_ROUNDS", 12)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_FROM", "noreply@shrmcounseling.org")
	v.SetDefault("ORG_NAME", "SHRM")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 0.11) // ~100 per 15 minutes
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("ASSIGNMENT_STRATEGY", "first-active")
	v.SetDefault("DEFAULT_LOCATION", "SHRM Office")

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }
