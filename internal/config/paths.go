package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved input and output file locations of a run.
// Empty output names mean the matching loader is disabled.
type Paths struct {
	InputDir      string
	OutputDir     string
	SalesFile     string
	CustomersFile string
	CSVFile       string
	JSONFile      string
	XLSXFile      string
	ManifestFile  string
	DBFile        string
}

// Paths resolves the configured names against the input and output dirs
func (c *Config) Paths() (*Paths, error) {
	inputDir, err := filepath.Abs(c.Pipeline.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input dir: %w", err)
	}
	outputDir, err := filepath.Abs(c.Output.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %w", err)
	}

	p := &Paths{
		InputDir:      inputDir,
		OutputDir:     outputDir,
		SalesFile:     join(inputDir, c.Pipeline.SalesFile),
		CustomersFile: join(inputDir, c.Pipeline.CustomersFile),
		CSVFile:       join(outputDir, c.Output.CSVFile),
		JSONFile:      join(outputDir, c.Output.JSONFile),
		XLSXFile:      join(outputDir, c.Output.XLSXFile),
		ManifestFile:  join(outputDir, c.Output.ManifestFile),
	}
	if c.Output.DBDriver == "sqlite" {
		p.DBFile = join(outputDir, c.Output.DBDSN)
	}

	return p, nil
}

// join resolves name under dir; absolute names are kept and empty names stay empty
func join(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// EnsureDirectories creates the input and output directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.InputDir, p.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// InputsExist reports whether both input files are present
func (p *Paths) InputsExist() bool {
	for _, f := range []string{p.SalesFile, p.CustomersFile} {
		info, err := os.Stat(f)
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved pipeline paths",
		slog.String("input_dir", p.InputDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("sales_file", p.SalesFile),
		slog.String("customers_file", p.CustomersFile),
		slog.String("db_file", p.DBFile))
}
