// Package config provides configuration management for the sales pipeline.
// It loads defaults, an optional YAML file and environment overrides, validates
// the result and resolves the file locations used by every stage.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SALESETL_<SECTION>_<FIELD>:
//
//	SALESETL_PIPELINE_INPUT_DIR=/data/in
//	SALESETL_PIPELINE_CHUNK_SIZE=5000
//	SALESETL_OUTPUT_DB_DRIVER=postgres
//	SALESETL_OUTPUT_DB_DSN=postgres://etl@localhost/sales?sslmode=disable
//	SALESETL_LOGGING_LEVEL=debug
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := cfg.Paths()
//
// Components never read configuration globally; main passes the relevant
// section to each constructor.
package config
