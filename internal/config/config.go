package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr      string
	DataDir       string
	DBDSN         string
	SQLitePath    string
	MigrationsDir string
	LogLevel      string
	MaxActions    int
}

// Storage names the backend the server persists learning and plans in.
type Storage string

const (
	StorageMemory   Storage = "memory"
	StoragePostgres Storage = "postgres"
	StorageSQLite   Storage = "sqlite"
)

func FromEnv() Config {
	return Config{
		HTTPAddr:      stringEnv("PLANNER_HTTP_ADDR", ":3000"),
		DataDir:       stringEnv("PLANNER_DATA_DIR", "./data"),
		DBDSN:         stringEnv("PLANNER_DB_DSN", ""),
		SQLitePath:    stringEnv("PLANNER_SQLITE_PATH", ""),
		MigrationsDir: stringEnv("PLANNER_MIGRATIONS_DIR", "./db/migrations"),
		LogLevel:      strings.ToLower(stringEnv("PLANNER_LOG_LEVEL", "info")),
		MaxActions:    intEnv("PLANNER_MAX_ACTIONS", 5000),
	}
}

// Storage prefers postgres, then sqlite, then memory.
func (c Config) Storage() Storage {
	switch {
	case c.DBDSN != "":
		return StoragePostgres
	case c.SQLitePath != "":
		return StorageSQLite
	default:
		return StorageMemory
	}
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
