package config

import (
	"encoding/json"
	"os"
	"time"

	"notemint/internal/flagx"
	"notemint/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "1h" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config struct.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	AdminPrincipals       []string       `json:"admin_principals"`
	TreasuryPrincipal     string         `json:"treasury_principal"`
	LedgerEndpoint        string         `json:"ledger_endpoint"`
	VetKDEndpoint         string         `json:"vetkd_endpoint"`
	VetKDMasterSecret     string         `json:"vetkd_master_secret"`
	StorageHeadroomBytes  uint64         `json:"storage_headroom_bytes"`
	ArchiveEnabled        bool           `json:"archive_enabled"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. When no file is named, nothing
// is loaded. An unreadable or invalid file panics: running with half-applied
// configuration would be worse than not starting.
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

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.AdminPrincipals = c.AdminPrincipals
	config.TreasuryPrincipal = c.TreasuryPrincipal
	config.LedgerEndpoint = c.LedgerEndpoint
	config.VetKDEndpoint = c.VetKDEndpoint
	config.VetKDMasterSecret = c.VetKDMasterSecret
	config.StorageHeadroomBytes = c.StorageHeadroomBytes
	config.ArchiveEnabled = c.ArchiveEnabled
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
