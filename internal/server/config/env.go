package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from the environment. A .env file in the
// working directory is loaded first if present; absence is not an error.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("NOTEMINT_ADDRESS"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("NOTEMINT_DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("NOTEMINT_SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("NOTEMINT_TOKEN_VALIDITY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
	if v := os.Getenv("NOTEMINT_ADMIN_PRINCIPALS"); v != "" {
		config.AdminPrincipals = splitPrincipals(v)
	}
	if v := os.Getenv("NOTEMINT_TREASURY_PRINCIPAL"); v != "" {
		config.TreasuryPrincipal = v
	}
	if v := os.Getenv("NOTEMINT_LEDGER_ENDPOINT"); v != "" {
		config.LedgerEndpoint = v
	}
	if v := os.Getenv("NOTEMINT_VETKD_ENDPOINT"); v != "" {
		config.VetKDEndpoint = v
	}
	if v := os.Getenv("NOTEMINT_VETKD_MASTER_SECRET"); v != "" {
		config.VetKDMasterSecret = v
	}
	if v := os.Getenv("NOTEMINT_STORAGE_HEADROOM_BYTES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.StorageHeadroomBytes = n
		}
	}
	if v := os.Getenv("NOTEMINT_ARCHIVE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.ArchiveEnabled = b
		}
	}
	if v := os.Getenv("NOTEMINT_S3_ROOT_USER"); v != "" {
		config.S3RootUser = v
	}
	if v := os.Getenv("NOTEMINT_S3_ROOT_PASSWORD"); v != "" {
		config.S3RootPassword = v
	}
	if v := os.Getenv("NOTEMINT_S3_BUCKET"); v != "" {
		config.S3Bucket = v
	}
	if v := os.Getenv("NOTEMINT_S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := os.Getenv("NOTEMINT_S3_BASE_ENDPOINT"); v != "" {
		config.S3BaseEndpoint = v
	}
}
