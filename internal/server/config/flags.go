package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/medvault/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-n int      lockout threshold, consecutive failures
//	-o int      lockout duration, minutes
//	-k string   field encryption key, hex
//	-i string   field encryption key id
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-n", "-o", "-k", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "JWT secret key")

	tokenTTL := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.IntVar(&config.LockoutThreshold, "n", config.LockoutThreshold, "failed attempts before lockout")
	lockoutDuration := fs.Int("o", int(config.LockoutDuration.Minutes()), "lockout duration (in minutes)")

	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "field encryption key (hex)")
	fs.StringVar(&config.EncryptionKeyID, "i", config.EncryptionKeyID, "field encryption key id")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*tokenTTL) * time.Minute
	config.LockoutDuration = time.Duration(*lockoutDuration) * time.Minute
}
