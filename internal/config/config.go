package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration required by the API process.
// Values come from env, optionally layered over a YAML file; env always wins.
// No business logic should depend on raw environment variables.
type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Auth  AuthConfig
	HTTP  HTTPConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	// URL is the store connection string. Never log it; it contains secrets.
	URL string
	// Timeout bounds every store operation so a stalled database surfaces as
	// a store-unavailable error instead of a hung request.
	Timeout time.Duration
}

type RedisConfig struct {
	// Addr is optional; an empty value disables the product cache.
	Addr     string
	CacheTTL time.Duration
}

type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AccessTokenTTL time.Duration
	BcryptCost     int
}

type HTTPConfig struct {
	CORSOrigins []string
	// TrustedProxies are IPs or CIDRs whose X-Forwarded-For is honored.
	TrustedProxies []string
}

const (
	defaultEnv          = "production"
	defaultPort         = 3000
	defaultStoreTimeout = 5 * time.Second
	defaultCacheTTL     = 5 * time.Minute
	defaultAccessTTL    = time.Hour
	defaultBcryptCost   = 10
)

// Load resolves configuration from the environment and, when path is not
// empty, from a YAML file at path.
func Load(path string) (Config, error) {
	src, err := newSource(path)
	if err != nil {
		return Config{}, err
	}

	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(src.get("APP_ENV", "app.env"))
	c.App.Port, parseErrs = parseInt(src, parseErrs, "PORT", "app.port")

	c.DB.URL = strings.TrimSpace(src.get("DATABASE_URL", "database.url"))
	c.DB.Timeout, parseErrs = parseDuration(src, parseErrs, "STORE_TIMEOUT", "database.timeout")

	c.Redis.Addr = strings.TrimSpace(src.get("REDIS_ADDR", "redis.addr"))
	c.Redis.CacheTTL, parseErrs = parseDuration(src, parseErrs, "PRODUCT_CACHE_TTL", "redis.cache_ttl")

	c.Auth.JWTSecret = src.get("JWT_SECRET", "auth.jwt_secret")
	c.Auth.JWTIssuer = strings.TrimSpace(src.get("JWT_ISSUER", "auth.jwt_issuer"))
	c.Auth.JWTAudience = strings.TrimSpace(src.get("JWT_AUDIENCE", "auth.jwt_audience"))
	c.Auth.AccessTokenTTL, parseErrs = parseDuration(src, parseErrs, "JWT_ACCESS_TTL", "auth.access_ttl")
	c.Auth.BcryptCost, parseErrs = parseInt(src, parseErrs, "BCRYPT_COST", "auth.bcrypt_cost")

	c.HTTP.CORSOrigins = src.list("CORS_ORIGINS", "http.cors_origins")
	c.HTTP.TrustedProxies = src.list("TRUSTED_PROXIES", "http.trusted_proxies")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultEnv
	}
	if c.App.Port == 0 {
		c.App.Port = defaultPort
	}
	if c.DB.Timeout == 0 {
		c.DB.Timeout = defaultStoreTimeout
	}
	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = defaultCacheTTL
	}
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = defaultAccessTTL
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = defaultBcryptCost
	}
}

func (c Config) Validate() error {
	var errs []error

	if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.DB.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", c.DB.Timeout))
	}
	if c.Redis.Addr != "" && c.Redis.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("PRODUCT_CACHE_TTL must be positive, got %s", c.Redis.CacheTTL))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_TTL must be positive, got %s", c.Auth.AccessTokenTTL))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost))
	}

	for _, o := range c.HTTP.CORSOrigins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Errorf("CORS_ORIGINS entries must start with http:// or https://, got %q", o))
		}
	}

	for _, p := range c.HTTP.TrustedProxies {
		if !validProxy(p) {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entries must be IPs or CIDRs, got %q", p))
		}
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// source layers env over an optional koanf-backed file.
type source struct {
	k *koanf.Koanf
}

func newSource(path string) (source, error) {
	if strings.TrimSpace(path) == "" {
		return source{}, nil
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return source{}, fmt.Errorf("config file %s: %w", path, err)
	}
	return source{k: k}, nil
}

func (s source) get(envKey, path string) string {
	if v, ok := os.LookupEnv(envKey); ok {
		return v
	}
	if s.k != nil {
		return s.k.String(path)
	}
	return ""
}

// list reads a comma-separated env value, or a file value written either as
// a YAML sequence or as a comma-separated string.
func (s source) list(envKey, path string) []string {
	if v, ok := os.LookupEnv(envKey); ok {
		return splitList(v)
	}
	if s.k == nil {
		return nil
	}
	switch s.k.Get(path).(type) {
	case []any, []string:
		return splitList(strings.Join(s.k.Strings(path), ","))
	default:
		return splitList(s.k.String(path))
	}
}

// parseInt returns 0 for an unset key so applyDefaults can fill it.
func parseInt(src source, errs []error, envKey, path string) (int, []error) {
	v := strings.TrimSpace(src.get(envKey, path))
	if v == "" {
		return 0, errs
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be an integer, got %q", envKey, v))
	}
	return n, errs
}

func parseDuration(src source, errs []error, envKey, path string) (time.Duration, []error) {
	v := strings.TrimSpace(src.get(envKey, path))
	if v == "" {
		return 0, errs
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be a duration, got %q", envKey, v))
	}
	return d, errs
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validProxy(v string) bool {
	if strings.Contains(v, "/") {
		_, _, err := net.ParseCIDR(v)
		return err == nil
	}
	return net.ParseIP(v) != nil
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
