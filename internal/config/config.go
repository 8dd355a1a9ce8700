// Package config loads the files manager settings. Values are taken from
// defaults, an optional JSON file, the environment and command-line flags,
// each source overriding the previous one, and validated before use.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/patric-chuzhbe/filesmanager/internal/models"
)

// Config holds all runtime settings of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" validate:"gt=0"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR"`
	SessionStorePath    string        `env:"SESSION_STORE_PATH"`
	SessionTTL          time.Duration `env:"SESSION_TTL" validate:"gt=0"`
	ContentStoreType    string        `env:"CONTENT_STORE" validate:"oneof=fs s3"`
	FolderPath          string        `env:"FOLDER_PATH" validate:"required"`
	S3Bucket            string        `env:"S3_BUCKET" validate:"required_if=ContentStoreType s3"`
	S3Region            string        `env:"S3_REGION"`
	S3Endpoint          string        `env:"S3_ENDPOINT" validate:"omitempty,url"`
	S3AccessKeyID       string        `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey   string        `env:"S3_SECRET_ACCESS_KEY"`
	S3KeyPrefix         string        `env:"S3_KEY_PREFIX"`
	TrustedSubnet       string        `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	ConfigFile          string        `env:"CONFIG"`
}

type jsonConfig struct {
	RunAddr           string `json:"server_address"`
	LogLevel          string `json:"log_level"`
	DBFileName        string `json:"file_storage_path"`
	DatabaseDSN       string `json:"database_dsn"`
	MigrationsDir     string `json:"migrations_dir"`
	SessionStorePath  string `json:"session_store_path"`
	SessionTTL        string `json:"session_ttl"`
	ContentStoreType  string `json:"content_store"`
	FolderPath        string `json:"folder_path"`
	S3Bucket          string `json:"s3_bucket"`
	S3Region          string `json:"s3_region"`
	S3Endpoint        string `json:"s3_endpoint"`
	S3AccessKeyID     string `json:"s3_access_key_id"`
	S3SecretAccessKey string `json:"s3_secret_access_key"`
	S3KeyPrefix       string `json:"s3_key_prefix"`
	TrustedSubnet     string `json:"trusted_subnet"`
}

var defaultConfig = Config{
	RunAddr:             "localhost:5000",
	LogLevel:            "info",
	DBFileName:          "",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	MigrationsDir:       "cmd/filesmanager/migrations",
	SessionStorePath:    "",
	SessionTTL:          24 * time.Hour,
	ContentStoreType:    models.ContentStoreFS,
	FolderPath:          "/tmp/files_manager",
	S3Region:            "us-east-1",
}

// InitOption customizes New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing makes New ignore os.Args. Tests use it.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds and validates the configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `godotenv.Load()` calling: %w", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}

	var flags *flagValues
	if !options.disableFlagsParsing {
		var err error
		flags, err = parseFlags(os.Args[1:])
		if err != nil {
			return nil, err
		}
	}

	configFile := valuesFromEnv.ConfigFile
	if flags != nil && flags.configFile != "" {
		configFile = flags.configFile
	}
	if configFile != "" {
		if err := values.loadJSON(configFile); err != nil {
			return nil, err
		}
		values.ConfigFile = configFile
	}

	applyDefaults(values, valuesFromEnv)
	if flags != nil {
		flags.applyTo(values)
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}

// applyDefaults copies every non-zero field of src into dst.
func applyDefaults(dst *Config, src Config) {
	setString := func(target *string, value string) {
		if value != "" {
			*target = value
		}
	}
	setDuration := func(target *time.Duration, value time.Duration) {
		if value != 0 {
			*target = value
		}
	}

	setString(&dst.RunAddr, src.RunAddr)
	setString(&dst.LogLevel, src.LogLevel)
	setString(&dst.DBFileName, src.DBFileName)
	setString(&dst.DatabaseDSN, src.DatabaseDSN)
	setDuration(&dst.DBConnectionTimeout, src.DBConnectionTimeout)
	setString(&dst.MigrationsDir, src.MigrationsDir)
	setString(&dst.SessionStorePath, src.SessionStorePath)
	setDuration(&dst.SessionTTL, src.SessionTTL)
	setString(&dst.ContentStoreType, src.ContentStoreType)
	setString(&dst.FolderPath, src.FolderPath)
	setString(&dst.S3Bucket, src.S3Bucket)
	setString(&dst.S3Region, src.S3Region)
	setString(&dst.S3Endpoint, src.S3Endpoint)
	setString(&dst.S3AccessKeyID, src.S3AccessKeyID)
	setString(&dst.S3SecretAccessKey, src.S3SecretAccessKey)
	setString(&dst.S3KeyPrefix, src.S3KeyPrefix)
	setString(&dst.TrustedSubnet, src.TrustedSubnet)
	setString(&dst.ConfigFile, src.ConfigFile)
}

func (c *Config) loadJSON(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `os.ReadFile()` calling: %w", err)
	}

	var fromFile jsonConfig
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("in internal/config/config.go/loadJSON(): error while `json.Unmarshal()` calling: %w", err)
	}

	var sessionTTL time.Duration
	if fromFile.SessionTTL != "" {
		sessionTTL, err = time.ParseDuration(fromFile.SessionTTL)
		if err != nil {
			return fmt.Errorf("in internal/config/config.go/loadJSON(): invalid session_ttl: %w", err)
		}
	}

	applyDefaults(c, Config{
		RunAddr:           fromFile.RunAddr,
		LogLevel:          fromFile.LogLevel,
		DBFileName:        fromFile.DBFileName,
		DatabaseDSN:       fromFile.DatabaseDSN,
		MigrationsDir:     fromFile.MigrationsDir,
		SessionStorePath:  fromFile.SessionStorePath,
		SessionTTL:        sessionTTL,
		ContentStoreType:  fromFile.ContentStoreType,
		FolderPath:        fromFile.FolderPath,
		S3Bucket:          fromFile.S3Bucket,
		S3Region:          fromFile.S3Region,
		S3Endpoint:        fromFile.S3Endpoint,
		S3AccessKeyID:     fromFile.S3AccessKeyID,
		S3SecretAccessKey: fromFile.S3SecretAccessKey,
		S3KeyPrefix:       fromFile.S3KeyPrefix,
		TrustedSubnet:     fromFile.TrustedSubnet,
	})

	return nil
}

type flagValues struct {
	runAddr          string
	logLevel         string
	dbFileName       string
	databaseDSN      string
	sessionStorePath string
	folderPath       string
	trustedSubnet    string
	configFile       string
}

func parseFlags(args []string) (*flagValues, error) {
	result := &flagValues{}

	flagSet := flag.NewFlagSet("filesmanager", flag.ContinueOnError)
	flagSet.StringVar(&result.runAddr, "a", "", "address and port to run server")
	flagSet.StringVar(&result.logLevel, "l", "", "logger level")
	flagSet.StringVar(&result.dbFileName, "f", "", "JSON file name with database")
	flagSet.StringVar(&result.databaseDSN, "d", "", "A string with the database connection details")
	flagSet.StringVar(&result.sessionStorePath, "s", "", "directory of the session store, in-memory when empty")
	flagSet.StringVar(&result.folderPath, "p", "", "directory where uploaded content is written")
	flagSet.StringVar(&result.trustedSubnet, "t", "", "CIDR allowed to read /stats")
	flagSet.StringVar(&result.configFile, "c", "", "path to a JSON config file")

	if err := flagSet.Parse(args); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/parseFlags(): error while `flagSet.Parse()` calling: %w", err)
	}

	return result, nil
}

func (f *flagValues) applyTo(c *Config) {
	applyDefaults(c, Config{
		RunAddr:          f.runAddr,
		LogLevel:         f.logLevel,
		DBFileName:       f.dbFileName,
		DatabaseDSN:      f.databaseDSN,
		SessionStorePath: f.sessionStorePath,
		FolderPath:       f.folderPath,
		TrustedSubnet:    f.trustedSubnet,
	})
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":  true,
		"info":   true,
		"warn":   true,
		"error":  true,
		"dpanic": true,
		"panic":  true,
		"fatal":  true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}
