// Package config loads settings from an optional TOML file and the
// environment through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned when any of the Trello credentials is
// absent.
var ErrMissingCredentials = errors.New("missing required Trello configuration")

type Config struct {
	Trello   TrelloConfig   `mapstructure:"trello"`
	Report   ReportConfig   `mapstructure:"report"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	Google   GoogleConfig   `mapstructure:"google"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

type TrelloConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	APIToken    string        `mapstructure:"api_token"`
	BoardID     string        `mapstructure:"board_id"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxAttempts uint          `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	DumpDir     string        `mapstructure:"dump_dir"`
	CallbackURL string        `mapstructure:"callback_url"`
}

type ReportConfig struct {
	Title              string   `mapstructure:"title"`
	ActiveLists        []string `mapstructure:"active_lists"`
	SuppressedLists    []string `mapstructure:"suppressed_lists"`
	MinContentLines    int      `mapstructure:"min_content_lines"`
	MovementWindowDays int      `mapstructure:"movement_window_days"`
	DateLayout         string   `mapstructure:"date_layout"`
	TimestampLayout    string   `mapstructure:"timestamp_layout"`
	Timezone           string   `mapstructure:"timezone"`
}

// Location resolves Timezone, falling back to the local zone when empty.
func (r ReportConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid report.timezone %q: %w", r.Timezone, err)
	}
	return loc, nil
}

type OutputConfig struct {
	Dir           string `mapstructure:"dir"`
	AggregateFile string `mapstructure:"aggregate_file"`
	MemberSuffix  string `mapstructure:"member_suffix"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type S3Config struct {
	Endpoint     string `mapstructure:"endpoint"`
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	Prefix       string `mapstructure:"prefix"`
}

func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

type GoogleConfig struct {
	Drive DriveConfig `mapstructure:"drive"`
	// ServiceAccount is the service account key, kept as a table so it can
	// live in config.toml next to everything else.
	ServiceAccount map[string]any `mapstructure:"service_account"`
}

type DriveConfig struct {
	FolderID string `mapstructure:"folder_id"`
}

func (c GoogleConfig) DriveEnabled() bool {
	return c.Drive.FolderID != ""
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trello.base_url", "https://api.trello.com/1/")
	v.SetDefault("trello.max_attempts", 10)
	v.SetDefault("trello.retry_delay", 2*time.Second)
	v.SetDefault("trello.dump_dir", "")
	v.SetDefault("trello.callback_url", "")

	v.SetDefault("report.title", "Maintenance Report")
	v.SetDefault("report.active_lists", []string{})
	v.SetDefault("report.suppressed_lists", []string{})
	v.SetDefault("report.min_content_lines", 1)
	v.SetDefault("report.movement_window_days", 31)
	v.SetDefault("report.date_layout", "01/02/06")
	v.SetDefault("report.timestamp_layout", "Monday January 2 2006, 3:04 PM")
	v.SetDefault("report.timezone", "")

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.aggregate_file", "out.txt")
	v.SetDefault("output.member_suffix", "_summary.txt")

	v.SetDefault("database.path", "")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("s3.prefix", "")

	v.SetDefault("google.drive.folder_id", "")

	v.SetDefault("server.port", "8080")

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.file", "report.log")
}

// Load reads path (or ./config.toml when path is empty) and overlays the
// environment. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"trello.api_key":   "TRELLO_API_KEY",
		"trello.api_token": "TRELLO_API_TOKEN",
		"trello.board_id":  "TRELLO_BOARD_ID",
		"log.level":        "LOG_LEVEL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the preconditions that must hold before any remote call.
func (c *Config) Validate() error {
	var missing []string
	if c.Trello.APIKey == "" {
		missing = append(missing, "TRELLO_API_KEY")
	}
	if c.Trello.APIToken == "" {
		missing = append(missing, "TRELLO_API_TOKEN")
	}
	if c.Trello.BoardID == "" {
		missing = append(missing, "TRELLO_BOARD_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s not defined as environment variables", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	if c.Trello.MaxAttempts == 0 {
		return errors.New("trello.max_attempts must be at least 1")
	}
	if c.Report.MovementWindowDays <= 0 {
		return errors.New("report.movement_window_days must be positive")
	}
	return nil
}
