package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/questload/pkg/questload"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "questload.yaml"

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

type ColumnNames struct {
	Name      string `yaml:"name,omitempty"`
	Key       string `yaml:"key,omitempty"`
	Expansion string `yaml:"expansion,omitempty"`
}

type ColumnPositions struct {
	Name      *int `yaml:"name,omitempty"`
	Key       *int `yaml:"key,omitempty"`
	Expansion *int `yaml:"expansion,omitempty"`
}

type CSVConfig struct {
	BaseDir          string          `yaml:"base_dir,omitempty"`
	English          string          `yaml:"english,omitempty"`
	Japanese         string          `yaml:"japanese,omitempty"`
	EnglishEncoding  string          `yaml:"english_encoding,omitempty"`
	JapaneseEncoding string          `yaml:"japanese_encoding,omitempty"`
	SkipRows         *int            `yaml:"skip_rows,omitempty"`
	HeaderRow        *int            `yaml:"header_row,omitempty"`
	Columns          ColumnNames     `yaml:"columns,omitempty"`
	Positions        ColumnPositions `yaml:"positions,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Store      StoreConfig      `yaml:"store"`
	Table      string           `yaml:"table,omitempty"`
	Timeout    string           `yaml:"timeout,omitempty"`
	CSV        CSVConfig        `yaml:"csv"`
}

// Load reads questload.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config file at an explicit path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Default returns a config carrying every built-in default, used by `questload config init`.
func Default() *ProjectConfig {
	skip, header := questload.DefaultSkipRows, questload.DefaultHeaderRow
	return &ProjectConfig{
		Connection: ConnectionConfig{Host: "localhost", Port: 5432, SSLMode: "prefer"},
		Store:      StoreConfig{Driver: DriverPostgres},
		Table:      questload.DefaultTableName,
		Timeout:    questload.DefaultTimeout.String(),
		CSV: CSVConfig{
			BaseDir:   ".",
			English:   questload.DefaultEnglishPath,
			Japanese:  questload.DefaultJapanesePath,
			SkipRows:  &skip,
			HeaderRow: &header,
			Columns: ColumnNames{
				Name:      questload.DefaultNameColumn,
				Key:       questload.DefaultKeyColumn,
				Expansion: questload.DefaultExpansionColumn,
			},
		},
	}
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Driver returns the configured store driver, defaulting to postgres.
func (c *ProjectConfig) Driver() (string, error) {
	if c == nil || c.Store.Driver == "" {
		return DriverPostgres, nil
	}
	switch d := strings.ToLower(c.Store.Driver); d {
	case DriverPostgres, "postgresql", "pg":
		return DriverPostgres, nil
	case DriverSQLite, "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unknown store driver %q (expected postgres or sqlite): %w", c.Store.Driver, questload.ErrInvalidConfig)
	}
}

// TableName returns the configured table, defaulting to Quest.
func (c *ProjectConfig) TableName() string {
	if c == nil || c.Table == "" {
		return questload.DefaultTableName
	}
	return c.Table
}

// ParseTimeout returns the configured timeout, or zero when unset.
func (c *ProjectConfig) ParseTimeout() (time.Duration, error) {
	if c == nil || c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout in %s: %v: %w", ConfigFileName, err, questload.ErrInvalidConfig)
	}
	return d, nil
}

// SourcePaths returns the English and Japanese sheet paths, joined onto
// baseDir. A non-empty baseDir argument overrides csv.base_dir.
func (c *ProjectConfig) SourcePaths(baseDir string) (english, japanese string) {
	english, japanese = questload.DefaultEnglishPath, questload.DefaultJapanesePath
	if c != nil {
		if c.CSV.English != "" {
			english = c.CSV.English
		}
		if c.CSV.Japanese != "" {
			japanese = c.CSV.Japanese
		}
		if baseDir == "" {
			baseDir = c.CSV.BaseDir
		}
	}
	if baseDir == "" {
		baseDir = "."
	}
	return joinUnlessAbs(baseDir, english), joinUnlessAbs(baseDir, japanese)
}

func joinUnlessAbs(base, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Layout merges csv settings over the default sheet layout.
func (c *ProjectConfig) Layout() questload.SheetLayout {
	layout := questload.DefaultSheetLayout()
	if c == nil {
		return layout
	}
	csv := c.CSV
	if csv.SkipRows != nil {
		layout.SkipRows = *csv.SkipRows
		// keep the names row in range when only skip_rows is lowered
		if csv.HeaderRow == nil && layout.HeaderRow > layout.SkipRows+1 {
			layout.HeaderRow = layout.SkipRows + 1
		}
	}
	if csv.HeaderRow != nil {
		layout.HeaderRow = *csv.HeaderRow
	}
	if csv.Columns.Name != "" {
		layout.NameColumn = csv.Columns.Name
	}
	if csv.Columns.Key != "" {
		layout.KeyColumn = csv.Columns.Key
	}
	if csv.Columns.Expansion != "" {
		layout.ExpansionColumn = csv.Columns.Expansion
	}
	if csv.Positions.Name != nil {
		layout.NameIndex = *csv.Positions.Name
	}
	if csv.Positions.Key != nil {
		layout.KeyIndex = *csv.Positions.Key
	}
	if csv.Positions.Expansion != nil {
		layout.ExpansionIndex = *csv.Positions.Expansion
	}
	return layout
}

// Encodings returns the configured English and Japanese text encodings.
func (c *ProjectConfig) Encodings() (english, japanese string) {
	if c == nil {
		return "", ""
	}
	return c.CSV.EnglishEncoding, c.CSV.JapaneseEncoding
}
