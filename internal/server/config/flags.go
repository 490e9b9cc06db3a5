package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"notemint/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-m string   comma-separated administrator principals
//	-w string   treasury principal for administration fees
//	-l string   ledger gateway base URL
//	-k string   vetKD gateway base URL (empty selects the local dev deriver)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-f          enable the ciphertext snapshot archive
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-m", "-w", "-l", "-k", "-u", "-p", "-b", "-g", "-e", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	admins := fs.String("m", strings.Join(config.AdminPrincipals, ","), "comma-separated admin principals")

	fs.StringVar(&config.TreasuryPrincipal, "w", config.TreasuryPrincipal, "treasury principal")
	fs.StringVar(&config.LedgerEndpoint, "l", config.LedgerEndpoint, "ledger gateway endpoint")
	fs.StringVar(&config.VetKDEndpoint, "k", config.VetKDEndpoint, "vetKD gateway endpoint")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.BoolVar(&config.ArchiveEnabled, "f", config.ArchiveEnabled, "enable ciphertext snapshot archive")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.AdminPrincipals = splitPrincipals(*admins)
}

func splitPrincipals(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
