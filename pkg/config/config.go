package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentTest        = "test"
	EnvironmentProduction  = "production"

	ObjectStorageCloudinary = "cloudinary"
	ObjectStorageS3         = "s3"

	defaultConfigFile = "/config/libris.yaml"
)

type Config struct {
	Environment string `koanf:"environment" default:"development"`

	ServerHost string `koanf:"server_host" default:"0.0.0.0"`
	ServerPort int    `koanf:"server_port" default:"6969"`
	CORSOrigin string `koanf:"cors_origin" default:"*"`
	AppURL     string `koanf:"app_url" default:"http://localhost:6969"`

	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`

	AccessTokenSecret            string        `koanf:"access_token_secret" required:"true"`
	AccessTokenExpiry            time.Duration `koanf:"access_token_expiry" default:"15m"`
	RefreshTokenSecret           string        `koanf:"refresh_token_secret" required:"true"`
	RefreshTokenExpiry           time.Duration `koanf:"refresh_token_expiry" default:"240h"`
	EmailVerificationTokenExpiry time.Duration `koanf:"email_verification_token_expiry" default:"20m"`

	ObjectStorageDriver string `koanf:"object_storage_driver" default:"cloudinary"`
	ObjectStorageFolder string `koanf:"object_storage_folder" default:"libris"`
	CloudinaryCloudName string `koanf:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `koanf:"cloudinary_api_key"`
	CloudinaryAPISecret string `koanf:"cloudinary_api_secret"`
	S3Bucket            string `koanf:"s3_bucket"`
	S3Region            string `koanf:"s3_region" default:"us-east-1"`
	S3Endpoint          string `koanf:"s3_endpoint"`
	MaxUploadSizeBytes  int64  `koanf:"max_upload_size_bytes" default:"1000000"`

	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port" default:"587"`
	SMTPUsername string `koanf:"smtp_username"`
	SMTPPassword string `koanf:"smtp_password"`
	MailFrom     string `koanf:"mail_from" default:"Libris <no-reply@libris.local>"`

	SessionSecret      string `koanf:"session_secret"`
	GoogleClientID     string `koanf:"google_client_id"`
	GoogleClientSecret string `koanf:"google_client_secret"`
	GithubClientID     string `koanf:"github_client_id"`
	GithubClientSecret string `koanf:"github_client_secret"`

	SentryDSN string `koanf:"sentry_dsn"`
}

// New loads the config file named by CONFIG_FILE (if it exists), then
// overlays environment variables. A config key like server_port is read from
// the SERVER_PORT environment variable.
func New() (*Config, error) {
	k := koanf.New(".")

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// PORT is what most hosting platforms inject.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SERVER_PORT") == "" && !k.Exists("server_port") {
		if err := k.Set("server_port", port); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := checkRequired(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config suitable for tests: an in-memory database and
// fixed token secrets.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.Environment = EnvironmentTest
	cfg.ServerHost = "127.0.0.1"
	cfg.DatabaseFilePath = ":memory:"
	cfg.AccessTokenSecret = "test-access-token-secret"
	cfg.RefreshTokenSecret = "test-refresh-token-secret"
	cfg.AppURL = "http://localhost:6969"
	return cfg
}

func (cfg *Config) IsProduction() bool {
	return cfg.Environment == EnvironmentProduction
}

func checkRequired(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("required") != "true" {
			continue
		}
		if !v.Field(i).IsZero() {
			continue
		}
		key := field.Tag.Get("koanf")
		return errors.Errorf("missing required config: set the %s environment variable or %s in the config file", strings.ToUpper(key), key)
	}
	return nil
}
