package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "salesetl/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "SALESETL"

// Config represents the complete application configuration
type Config struct {
	Pipeline      PipelineConfig      `yaml:"pipeline" envconfig:"PIPELINE"`
	Output        OutputConfig        `yaml:"output" envconfig:"OUTPUT"`
	Publish       PublishConfig       `yaml:"publish" envconfig:"PUBLISH"`
	Lock          LockConfig          `yaml:"lock" envconfig:"LOCK"`
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// PipelineConfig contains input locations and transform settings
type PipelineConfig struct {
	InputDir      string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	SalesFile     string `yaml:"sales_file" envconfig:"SALES_FILE" validate:"required"`
	CustomersFile string `yaml:"customers_file" envconfig:"CUSTOMERS_FILE" validate:"required"`
	ChunkSize     int    `yaml:"chunk_size" envconfig:"CHUNK_SIZE" validate:"min=1"`
	DateLayout    string `yaml:"date_layout" envconfig:"DATE_LAYOUT" validate:"required"`
	CreateSample  bool   `yaml:"create_sample" envconfig:"CREATE_SAMPLE"`
}

// OutputConfig contains output locations for every loader
type OutputConfig struct {
	OutputDir    string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	CSVFile      string `yaml:"csv_file" envconfig:"CSV_FILE"`
	JSONFile     string `yaml:"json_file" envconfig:"JSON_FILE"`
	XLSXFile     string `yaml:"xlsx_file" envconfig:"XLSX_FILE"`
	ManifestFile string `yaml:"manifest_file" envconfig:"MANIFEST_FILE"`
	DBDriver     string `yaml:"db_driver" envconfig:"DB_DRIVER" validate:"omitempty,oneof=sqlite postgres"`
	DBDSN        string `yaml:"db_dsn" envconfig:"DB_DSN"`
}

// PublishConfig contains optional object storage publishing settings
type PublishConfig struct {
	S3Bucket string `yaml:"s3_bucket" envconfig:"S3_BUCKET"`
	S3Prefix string `yaml:"s3_prefix" envconfig:"S3_PREFIX"`
	S3Region string `yaml:"s3_region" envconfig:"S3_REGION"`
}

// LockConfig contains the optional Redis run lock settings
type LockConfig struct {
	RedisAddr string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	Key       string        `yaml:"key" envconfig:"KEY" validate:"required_with=RedisAddr"`
	TTL       time.Duration `yaml:"ttl" envconfig:"TTL" validate:"required_with=RedisAddr"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// ObservabilityConfig contains tracing and metrics settings
type ObservabilityConfig struct {
	Tracing       bool   `yaml:"tracing" envconfig:"TRACING"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"omitempty,oneof=stdout none"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputDir:      "data/input",
			SalesFile:     "sales.csv",
			CustomersFile: "customers.json",
			ChunkSize:     1000,
			DateLayout:    "2006-01-02",
			CreateSample:  true,
		},
		Output: OutputConfig{
			OutputDir:    "data/output",
			CSVFile:      "processed_sales.csv",
			JSONFile:     "processed_sales.json",
			ManifestFile: "run_manifest.json",
			DBDriver:     "sqlite",
			DBDSN:        "processed_sales.db",
		},
		Lock: LockConfig{
			Key: "salesetl",
			TTL: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/salesetl.log",
		},
		Observability: ObservabilityConfig{
			TraceExporter: "none",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// SALESETL_* environment variables, in increasing order of precedence.
// An empty filePath searches the usual locations.
func Load(filePath string) (*Config, error) {
	cfg := Default()

	if filePath == "" {
		filePath = getConfigFilePath()
	}
	if filePath != "" {
		if err := loadFromFile(filePath, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", filePath)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the first config file found in the usual places
func getConfigFilePath() string {
	locations := []string{
		"salesetl.yaml",
		"configs/salesetl.yaml",
		"../configs/salesetl.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Output.DBDriver = strings.ToLower(c.Output.DBDriver)
	if c.Output.DBDSN == "" {
		c.Output.DBDriver = ""
	}
}

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	if c.Output.DBDSN != "" && c.Output.DBDriver == "" {
		return apperrors.NewConfigError("output.db_driver is required when output.db_dsn is set", nil)
	}
	// an empty DSN would open a throwaway sqlite database
	if c.Output.DBDriver != "" && c.Output.DBDSN == "" {
		return apperrors.NewConfigError("output.db_dsn is required when output.db_driver is set", nil)
	}

	return nil
}
