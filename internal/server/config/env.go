package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays environment variables onto the Config. The process
// environment is where deployments inject secrets, so it wins over the JSON
// file but still loses to explicit command-line flags.
func parseEnv(config *Config) {
	if v := os.Getenv("ENDPOINT_ADDR"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v := os.Getenv("LOCKOUT_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.LockoutThreshold = n
		}
	}
	if v := os.Getenv("LOCKOUT_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.LockoutDuration = d
		}
	}
	if v := os.Getenv("ENCRYPTION_KEY"); v != "" {
		config.EncryptionKey = v
	}
	if v := os.Getenv("ENCRYPTION_KEY_ID"); v != "" {
		config.EncryptionKeyID = v
	}
}
