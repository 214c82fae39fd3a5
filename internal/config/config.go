package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	DBDSN       string
	Storage     string // sqlite | file | memory | s3
	StorageFile string
	S3Bucket    string
	S3Prefix    string
	S3Region    string
	S3Endpoint  string
	LogFile     string
	Session     string
	MaxSessions int
	SessionTTL  time.Duration
}

// Defaults registers default values and BOOKSTORE_* environment lookup on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db-dsn", "bookstore.db") // sqlite file in project root
	v.SetDefault("storage", "sqlite")
	v.SetDefault("storage-file", "data/state.json")
	v.SetDefault("s3-bucket", "")
	v.SetDefault("s3-prefix", "bookstore/")
	v.SetDefault("s3-region", "us-east-1")
	v.SetDefault("s3-endpoint", "")
	v.SetDefault("log-file", "")
	v.SetDefault("session", "cli")
	v.SetDefault("max-sessions", 10000)
	v.SetDefault("session-ttl", 30*time.Minute)

	v.SetEnvPrefix("BOOKSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads the optional config file named by "config" and returns the
// resolved configuration.
func Load(v *viper.Viper) (Config, error) {
	if f := v.GetString("config"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}
	cfg := Config{
		Port:        v.GetString("port"),
		DBDSN:       v.GetString("db-dsn"),
		Storage:     strings.ToLower(v.GetString("storage")),
		StorageFile: v.GetString("storage-file"),
		S3Bucket:    v.GetString("s3-bucket"),
		S3Prefix:    v.GetString("s3-prefix"),
		S3Region:    v.GetString("s3-region"),
		S3Endpoint:  v.GetString("s3-endpoint"),
		LogFile:     v.GetString("log-file"),
		Session:     v.GetString("session"),
		MaxSessions: v.GetInt("max-sessions"),
		SessionTTL:  v.GetDuration("session-ttl"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s STORAGE=%s LOG_FILE=%s MAX_SESSIONS=%d SESSION_TTL=%s",
		cfg.Port, cfg.DBDSN, cfg.Storage, cfg.LogFile, cfg.MaxSessions, cfg.SessionTTL)
	return cfg, nil
}
