// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// Config is the process configuration, read once at boot from the
// environment (a .env file is loaded by the autoload import in main).
type Config struct {
	Port      string
	CardsPath string

	// QuickStart starts a game on the first ready instead of waiting
	// for the full readiness predicate. Debug aid.
	QuickStart bool

	// ReliablePrivateState routes private board snapshots through the
	// sequence/ack sublayer instead of best-effort delivery.
	ReliablePrivateState bool

	// RedisAddr enables the action-history publisher when non-empty.
	RedisAddr      string
	RedisDB        int
	HistorianQueue string
}

func Load() Config {
	return Config{
		Port:                 getEnv("PORT", "8080"),
		CardsPath:            getEnv("CARDS_PATH", "data/cards/loot.json"),
		QuickStart:           getEnvBool("QUICK_START", false),
		ReliablePrivateState: getEnvBool("RELIABLE_PRIVATE_STATE", true),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		HistorianQueue:       getEnv("HISTORIAN_QUEUE_NAME", "foursouls_actions"),
	}
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer value from an environment variable or
// returns a default value.
func getEnvInt(key string, defVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defVal
}

func getEnvBool(key string, defVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defVal
}
