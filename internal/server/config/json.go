package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/medvault/internal/flagx"
	"github.com/dmitrijs2005/medvault/internal/timex"
)

// JsonConfig is an intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for interval fields, which parses both string
// values such as "15m" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	LockoutThreshold            int            `json:"lockout_threshold"`
	LockoutDuration             timex.Duration `json:"lockout_duration"`
	EncryptionKey               string         `json:"encryption_key"`
	EncryptionKeyID             string         `json:"encryption_key_id"`
	HashTimeCost                uint32         `json:"hash_time_cost"`
	HashMemoryKiB               uint32         `json:"hash_memory_kib"`
	HashParallelism             uint8          `json:"hash_parallelism"`
}

// parseJson loads configuration values from an optional JSON file into the
// provided Config. The file path comes from the -c/-config flags; if neither
// is set, no JSON file is loaded. An unreadable or invalid file panics: a
// present-but-broken config file should stop startup, not be skipped.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.LockoutThreshold != 0 {
		config.LockoutThreshold = c.LockoutThreshold
	}
	if c.LockoutDuration.Duration != 0 {
		config.LockoutDuration = c.LockoutDuration.Duration
	}
	if c.EncryptionKey != "" {
		config.EncryptionKey = c.EncryptionKey
	}
	if c.EncryptionKeyID != "" {
		config.EncryptionKeyID = c.EncryptionKeyID
	}
	if c.HashTimeCost != 0 {
		config.HashTimeCost = c.HashTimeCost
	}
	if c.HashMemoryKiB != 0 {
		config.HashMemoryKiB = c.HashMemoryKiB
	}
	if c.HashParallelism != 0 {
		config.HashParallelism = c.HashParallelism
	}
}
