package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadEnv_Defaults(t *testing.T) {
	for _, k := range []string{"STORAGE", "JWT_TTL_HOURS", "CORS_ALLOWED_ORIGINS", "DEFAULT_CURRENCY", "DB_AUTO_MIGRATE", "APP_ADDR"} {
		t.Setenv(k, "")
	}
	env := LoadEnv()
	if env.Storage != StorageMySQL || env.AppAddr != ":8080" || env.DefaultCurrency != "EUR" {
		t.Fatalf("unexpected defaults %+v", env)
	}
	if env.JWTTTL != 12*time.Hour || !env.DBAutoMigrate {
		t.Fatalf("unexpected ttl/migrate %v %v", env.JWTTTL, env.DBAutoMigrate)
	}
	if len(env.CORSAllowedOrigins) != 1 || env.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected origins %v", env.CORSAllowedOrigins)
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE", "Memory")
	t.Setenv("JWT_TTL_HOURS", "-3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DEFAULT_CURRENCY", "usd")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	env := LoadEnv()
	if env.Storage != StorageMemory || env.DefaultCurrency != "USD" || env.DBAutoMigrate {
		t.Fatalf("overrides not applied %+v", env)
	}
	if env.JWTTTL != 12*time.Hour {
		t.Fatalf("invalid ttl must fall back to 12h, got %v", env.JWTTTL)
	}
	if len(env.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", env.CORSAllowedOrigins)
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN(Env{DBUser: "app", DBPassword: "pw", DBHost: "db", DBPort: "3307", DBName: "tours"})
	if !strings.HasPrefix(dsn, "app:pw@tcp(db:3307)/tours?") {
		t.Fatalf("unexpected dsn %s", dsn)
	}
	for _, want := range []string{"parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn %s missing %s", dsn, want)
		}
	}
}
