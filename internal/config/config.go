package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vitasurvey/internal/survey"
)

// Config holds the service configuration. Values come from defaults, then the optional
// YAML file, then environment variables.
type Config struct {
	MongoURI      string        `yaml:"mongoUri"`
	MongoDatabase string        `yaml:"mongoDatabase"`
	RedisAddr     string        `yaml:"redisAddr"`
	HTTPPort      string        `yaml:"httpPort"`
	JWTSecret     string        `yaml:"-"` // env only
	SessionTTL    time.Duration `yaml:"sessionTtl"`
	TreeCacheTTL  time.Duration `yaml:"treeCacheTtl"`
	CatalogPinTTL time.Duration `yaml:"catalogPinTtl"` // how long a replaced catalog stays readable
	LogLevel      string        `yaml:"logLevel"`
	CORS          CORSConfig    `yaml:"cors"`
	Forward       ForwardConfig `yaml:"forward"`
	Rules         survey.Rules  `yaml:"rules"`
}

// ForwardConfig points at the storefront endpoint that also receives submissions.
// An empty URL disables forwarding.
type ForwardConfig struct {
	URL        string        `yaml:"url"`
	Token      string        `yaml:"-"` // env only
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"maxRetries"`
}

// CORSConfig is passed to the router's CORS middleware
type CORSConfig struct {
	AllowedOrigins string `yaml:"allowedOrigins"`
	AllowedMethods string `yaml:"allowedMethods"`
	AllowedHeaders string `yaml:"allowedHeaders"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "vitasurvey",
		RedisAddr:     "localhost:6379",
		HTTPPort:      "8080",
		JWTSecret:     "super-secret-key-change-in-production",
		SessionTTL:    2 * time.Hour,
		TreeCacheTTL:  time.Hour,
		CatalogPinTTL: 24 * time.Hour,
		LogLevel:      "info",
		CORS: CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET, POST, PUT, DELETE, OPTIONS",
			AllowedHeaders: "Content-Type, Authorization",
		},
		Forward: ForwardConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 3,
		},
		Rules: survey.DefaultRules(),
	}
}

// Load reads path (if not empty) over the defaults and applies environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate checks the values Load cannot default
func (c *Config) Validate() error {
	var errs []error
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("sessionTtl must be positive"))
	}
	if c.TreeCacheTTL < 0 {
		errs = append(errs, errors.New("treeCacheTtl must not be negative"))
	}
	if c.CatalogPinTTL < c.SessionTTL {
		errs = append(errs, errors.New("catalogPinTtl must be at least sessionTtl"))
	}
	if c.Forward.URL != "" && c.Forward.MaxRetries < 1 {
		errs = append(errs, errors.New("forward.maxRetries must be at least 1"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() error {
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGO_DATABASE", c.MongoDatabase)
	c.RedisAddr = strings.TrimPrefix(getEnv("REDIS_URI", c.RedisAddr), "redis://")
	c.HTTPPort = getEnv("PORT", c.HTTPPort)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.CORS.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)
	c.CORS.AllowedMethods = getEnv("CORS_ALLOWED_METHODS", c.CORS.AllowedMethods)
	c.CORS.AllowedHeaders = getEnv("CORS_ALLOWED_HEADERS", c.CORS.AllowedHeaders)
	c.Forward.URL = getEnv("SUBMISSION_URL", c.Forward.URL)
	c.Forward.Token = getEnv("SUBMISSION_TOKEN", c.Forward.Token)

	var err error
	if c.SessionTTL, err = getEnvDuration("SESSION_TTL", c.SessionTTL); err != nil {
		return err
	}
	if c.TreeCacheTTL, err = getEnvDuration("TREE_CACHE_TTL", c.TreeCacheTTL); err != nil {
		return err
	}
	if c.CatalogPinTTL, err = getEnvDuration("CATALOG_PIN_TTL", c.CatalogPinTTL); err != nil {
		return err
	}
	if v := os.Getenv("GENDER_QUESTION_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GENDER_QUESTION_ID: %w", err)
		}
		c.Rules.GenderQuestionID = id
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
