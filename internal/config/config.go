package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Storage
		Tasks
		Watch
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}

	Database struct {
		Path string
	}

	// Storage configures the managed blob area imported volumes and
	// thumbnails are written under.
	Storage struct {
		DataLocation string
	}

	Tasks struct {
		Workers         int
		TaskTimeout     time.Duration
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}

	// Watch configures the optional scheduled scan of an incoming
	// directory.
	Watch struct {
		Enabled   bool
		Dir       string
		Schedule  string // Cron format: "*/10 * * * *" = every 10 minutes
		IndexOnly bool
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("data_location", DefaultDataLocation)

	// Task queue defaults
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_timeout", "30m")
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Watch directory defaults
	v.SetDefault("watch_enabled", false)
	v.SetDefault("watch_dir", "")
	v.SetDefault("watch_schedule", "*/10 * * * *")
	v.SetDefault("watch_index_only", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			DataLocation: v.GetString("DATA_LOCATION"),
		},
		Tasks: Tasks{
			Workers:         v.GetInt("TASK_WORKERS"),
			TaskTimeout:     v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Watch: Watch{
			Enabled:   v.GetBool("WATCH_ENABLED"),
			Dir:       v.GetString("WATCH_DIR"),
			Schedule:  v.GetString("WATCH_SCHEDULE"),
			IndexOnly: v.GetBool("WATCH_INDEX_ONLY"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
