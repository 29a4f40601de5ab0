package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jengzang/carsharing-backend-go/internal/snapshot"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Driver string
	DSN    string
}

type SnapshotConfig struct {
	Source string
	Dir    string
	Offset string
	S3     S3Config
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Prefix          string
	UseSSL          bool
}

type ImportConfig struct {
	CommitEvery   int
	GlitchSeconds int64
}

type NATSConfig struct {
	URL     string
	Subject string
}

// Config 应用配置
type Config struct {
	Environment     string
	LogLevel        string
	HTTP            HTTPConfig
	DB              DBConfig
	Snapshot        SnapshotConfig
	Import          ImportConfig
	NATS            NATSConfig
	MetricsTextfile string
}

// Location returns the fixed zone snapshot file names are written in.
func (c *Config) Location() (*time.Location, error) {
	return snapshot.ParseOffset(c.Snapshot.Offset)
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"env":          "APP_ENV",
	"log-level":    "LOG_LEVEL",
	"db-driver":    "DB_DRIVER",
	"db-dsn":       "DB_DSN",
	"source":       "SNAPSHOT_SOURCE",
	"dir":          "SNAPSHOT_DIR",
	"stamp-offset": "SNAPSHOT_STAMP_OFFSET",
	"commit-every": "IMPORT_COMMIT_EVERY",
	"glitch":       "TRIP_GLITCH_SECONDS",
	"host":         "HTTP_HOST",
	"port":         "HTTP_PORT",
	"nats-url":     "NATS_URL",
	"metrics-file": "METRICS_TEXTFILE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "./data/car2go.db3")
	v.SetDefault("SNAPSHOT_SOURCE", "dir")
	v.SetDefault("SNAPSHOT_DIR", "./data")
	v.SetDefault("SNAPSHOT_STAMP_OFFSET", "+01:00")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("IMPORT_COMMIT_EVERY", 50)
	v.SetDefault("TRIP_GLITCH_SECONDS", 70)
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("NATS_SUBJECT", "carsharing.state")
}

// Load 加载配置: defaults, then .env / app.env, then the environment, then flags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	_ = v.ReadInConfig()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			Driver: v.GetString("DB_DRIVER"),
			DSN:    v.GetString("DB_DSN"),
		},
		Snapshot: SnapshotConfig{
			Source: v.GetString("SNAPSHOT_SOURCE"),
			Dir:    v.GetString("SNAPSHOT_DIR"),
			Offset: v.GetString("SNAPSHOT_STAMP_OFFSET"),
			S3: S3Config{
				Endpoint:        v.GetString("S3_ENDPOINT"),
				AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
				SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
				Bucket:          v.GetString("S3_BUCKET"),
				Prefix:          v.GetString("S3_PREFIX"),
				UseSSL:          v.GetBool("S3_USE_SSL"),
			},
		},
		Import: ImportConfig{
			CommitEvery:   v.GetInt("IMPORT_COMMIT_EVERY"),
			GlitchSeconds: v.GetInt64("TRIP_GLITCH_SECONDS"),
		},
		NATS: NATSConfig{
			URL:     v.GetString("NATS_URL"),
			Subject: v.GetString("NATS_SUBJECT"),
		},
		MetricsTextfile: v.GetString("METRICS_TEXTFILE"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.DB.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or pgx, got %q", cfg.DB.Driver)
	}
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	switch cfg.Snapshot.Source {
	case "dir":
		if cfg.Snapshot.Dir == "" {
			return fmt.Errorf("SNAPSHOT_DIR is required for the dir source")
		}
	case "s3":
		if cfg.Snapshot.S3.Endpoint == "" || cfg.Snapshot.S3.Bucket == "" {
			return fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required for the s3 source")
		}
	default:
		return fmt.Errorf("SNAPSHOT_SOURCE must be dir or s3, got %q", cfg.Snapshot.Source)
	}
	if _, err := snapshot.ParseOffset(cfg.Snapshot.Offset); err != nil {
		return fmt.Errorf("SNAPSHOT_STAMP_OFFSET: %w", err)
	}
	if cfg.Import.CommitEvery <= 0 {
		return fmt.Errorf("IMPORT_COMMIT_EVERY must be positive")
	}
	if cfg.Import.GlitchSeconds < 0 {
		return fmt.Errorf("TRIP_GLITCH_SECONDS must not be negative")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", cfg.HTTP.Port)
	}
	return nil
}
