package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	DataDir    string
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	CORSOrigin string
	// Redis Configuration - refresh sessions fall back to memory if empty
	RedisURL string
	// Meilisearch Configuration - search falls back to ledger scans if empty
	MeiliURL       string
	MeiliMasterKey string
	// Audit Configuration
	AuditEnabled bool
	// Backup Configuration - disabled unless an endpoint is set
	BackupEndpoint  string
	BackupAccessKey string
	BackupSecretKey string
	BackupBucket    string
	BackupUseSSL    bool
}

func Load() Config {
	return Config{
		Addr:            getenv("API_ADDR", ":8686"),
		DataDir:         getenv("PICKTRACK_DATA_DIR", "./data"),
		JWTSecret:       getenv("PICKTRACK_JWT_SECRET", "picktrack-dev-secret"),
		AccessTTL:       time.Duration(getenvInt("PICKTRACK_ACCESS_TTL_SECONDS", 900)) * time.Second,
		RefreshTTL:      time.Duration(getenvInt("PICKTRACK_REFRESH_TTL_SECONDS", 2592000)) * time.Second,
		CORSOrigin:      getenv("PICKTRACK_CORS_ORIGIN", "*"),
		RedisURL:        getenv("REDIS_URL", ""),
		MeiliURL:        getenv("MEILI_URL", ""),
		MeiliMasterKey:  getenv("MEILI_MASTER_KEY", ""),
		AuditEnabled:    getenvBool("PICKTRACK_AUDIT", true),
		BackupEndpoint:  getenv("PICKTRACK_BACKUP_ENDPOINT", ""),
		BackupAccessKey: getenv("PICKTRACK_BACKUP_ACCESS_KEY", ""),
		BackupSecretKey: getenv("PICKTRACK_BACKUP_SECRET_KEY", ""),
		BackupBucket:    getenv("PICKTRACK_BACKUP_BUCKET", "picktrack-snapshots"),
		BackupUseSSL:    getenvBool("PICKTRACK_BACKUP_SSL", true),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
