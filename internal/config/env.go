package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Env struct {
	AppAddr string
	GinMode string
	Storage string

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBAutoMigrate bool

	JWTSecret string
	JWTTTL    time.Duration

	CORSAllowedOrigins []string
	DefaultCurrency    string

	// SeedAdminPassword seeds an "admin" user when STORAGE=memory.
	SeedAdminPassword string
}

// LoadEnv reads an optional .env file, then the process environment. Values
// already set in the environment win over the file.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[CONFIG] .env not loaded: %v", err)
	}

	storage := strings.ToLower(getenv("STORAGE", StorageMySQL))
	if storage != StorageMemory {
		storage = StorageMySQL
	}

	ttlHours, err := strconv.Atoi(getenv("JWT_TTL_HOURS", "12"))
	if err != nil || ttlHours <= 0 {
		ttlHours = 12
	}

	return Env{
		AppAddr: getenv("APP_ADDR", ":8080"),
		GinMode: getenv("GIN_MODE", ""),
		Storage: storage,

		DBHost:        getenv("DB_HOST", "127.0.0.1"),
		DBPort:        getenv("DB_PORT", "3306"),
		DBUser:        getenv("DB_USER", "root"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getenv("DB_NAME", "tourquote"),
		DBAutoMigrate: parseBool(getenv("DB_AUTO_MIGRATE", "true")),

		JWTSecret: getenv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTL:    time.Duration(ttlHours) * time.Hour,

		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		DefaultCurrency:    strings.ToUpper(getenv("DEFAULT_CURRENCY", "EUR")),

		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
