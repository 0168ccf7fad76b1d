package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig(env string) Config {
	return Config{
		App:   AppConfig{Env: env, Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "storefront"},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "JWT_SECRET is required") {
		t.Fatalf("expected missing secret to be reported, got %v", err)
	}
}

func TestValidate_AppliesDefaults(t *testing.T) {
	c := validConfig("local")
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Auth.TokenTTL != 30*24*time.Hour {
		t.Fatalf("expected 30 day token ttl, got %v", c.Auth.TokenTTL)
	}
	if c.Security.BcryptCost != 12 || c.Security.LoginMaxAttempts != 10 || c.Security.LoginAttemptWindow != 15*time.Minute {
		t.Fatalf("unexpected security defaults: %+v", c.Security)
	}
}

func TestValidate_ProductionRequiresSSLModeAndLongSecret(t *testing.T) {
	c := validConfig("production")
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected error for production config")
	}
	if !strings.Contains(err.Error(), "DB_SSLMODE") || !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Fatalf("expected sslmode and secret length errors, got %v", err)
	}
}

func TestValidate_RejectsBcryptCostOutOfRange(t *testing.T) {
	c := validConfig("dev")
	c.Security.BcryptCost = 40
	if err := c.Validate(); err == nil {
		t.Fatalf("expected bcrypt cost error")
	}
}

func TestLoad_ReadsEnv(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_TTL", "1h")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HTTPAddr() != ":9000" || c.RedisAddr() != "cache:6379" {
		t.Fatalf("unexpected addrs: %s %s", c.HTTPAddr(), c.RedisAddr())
	}
	if c.Auth.TokenTTL != time.Hour {
		t.Fatalf("expected JWT_TTL override, got %v", c.Auth.TokenTTL)
	}
	if got := c.PostgresURL(); got != "postgres://shop:p%40ss@db:5432/shop?sslmode=disable" {
		t.Fatalf("unexpected postgres url %q", got)
	}
}

func TestLoad_ReportsBadPort(t *testing.T) {
	t.Setenv("APP_PORT", "eighty")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error")
	}
}

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_NAME", "shop")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_ReportsUnparsableOptionalValues(t *testing.T) {
	setValidEnv(t)
	t.Setenv("BCRYPT_COST", "abc")
	t.Setenv("JWT_TTL", "30days")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "ten")
	t.Setenv("LOGIN_ATTEMPT_WINDOW", "soon")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for unparsable optional values")
	}
	for _, key := range []string{"BCRYPT_COST", "JWT_TTL", "LOGIN_MAX_ATTEMPTS", "LOGIN_ATTEMPT_WINDOW"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s to be reported, got %v", key, err)
		}
	}
}

func TestLoad_UnsetOptionalValuesUseDefaults(t *testing.T) {
	setValidEnv(t)
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("JWT_TTL", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Security.BcryptCost != 12 || c.Auth.TokenTTL != DefaultTokenTTL {
		t.Fatalf("expected defaults, got cost=%d ttl=%v", c.Security.BcryptCost, c.Auth.TokenTTL)
	}
}
