/*
 * Copyright 2025 the dbparity authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Side identifies which pipeline a database connection belongs to.
type Side string

const (
	// SideInformatica is the legacy pipeline, treated as ground truth.
	SideInformatica Side = "informatica"
	// SidePythonETL is the replacement pipeline under validation.
	SidePythonETL Side = "python_etl"
)

// DatabaseConfig holds connection settings for one side of one environment.
type DatabaseConfig struct {
	Dialect                        string `mapstructure:"dialect"`
	Host                           string `mapstructure:"host"`
	Port                           int    `mapstructure:"port"`
	User                           string `mapstructure:"user"`
	Password                       string `mapstructure:"password"`
	DBName                         string `mapstructure:"database"`
	SSLMode                        string `mapstructure:"sslmode"`
	Service                        string `mapstructure:"service"`
	CloudSQLInstanceConnectionName string `mapstructure:"cloudsql_instance_connection_name"`
	UsePrivateIP                   bool   `mapstructure:"cloudsql_use_private_ip"`
}

// EnvironmentConfig holds the two sides of one environment.
type EnvironmentConfig struct {
	Informatica DatabaseConfig `mapstructure:"informatica"`
	PythonETL   DatabaseConfig `mapstructure:"python_etl"`
}

// Database returns the configuration for the given side.
func (e EnvironmentConfig) Database(side Side) (DatabaseConfig, error) {
	switch side {
	case SideInformatica:
		return e.Informatica, nil
	case SidePythonETL:
		return e.PythonETL, nil
	}
	return DatabaseConfig{}, fmt.Errorf("unknown side: %s", side)
}

// TableSpec names a table and the key columns rows are aligned on.
type TableSpec struct {
	Name       string   `mapstructure:"name"`
	KeyColumns []string `mapstructure:"key_columns"`
}

// CategoryConfig groups the tables belonging to one business category.
type CategoryConfig struct {
	Tables []TableSpec `mapstructure:"tables"`
}

// Table looks up a table spec by name (case-insensitive).
func (c CategoryConfig) Table(name string) (TableSpec, bool) {
	for _, t := range c.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return TableSpec{}, false
}

// CompareConfig holds tuning knobs for the comparison engine.
type CompareConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	Workers   int `mapstructure:"workers"`
	// TrimPadding controls trailing-space trimming for fixed-width string
	// columns: "both" (default), "none", "source" or "target".
	TrimPadding      string `mapstructure:"trim_padding"`
	TreatEmptyAsNull bool   `mapstructure:"treat_empty_as_null"`
}

// Config is the full application configuration.
type Config struct {
	Environments map[string]EnvironmentConfig `mapstructure:"environments"`
	Categories   map[string]CategoryConfig    `mapstructure:"categories"`
	Compare      CompareConfig                `mapstructure:"compare"`
	Listen       string                       `mapstructure:"listen"`
}

const (
	DefaultBatchSize = 1000
	DefaultWorkers   = 4
)

// envPrefixes maps environment names to the credential prefix used in the
// process environment, e.g. DEV_INFORMATICA_USER.
var envPrefixes = map[string]string{
	"Development":    "DEV",
	"Pre-Production": "PREPROD",
	"Production":     "PROD",
}

// The file lists environments and categories as named entries rather than
// maps: viper folds map keys to lower case, which would mangle names like
// "Pre-Production" and "Customer Data".
type environmentEntry struct {
	Name        string         `mapstructure:"name"`
	Informatica DatabaseConfig `mapstructure:"informatica"`
	PythonETL   DatabaseConfig `mapstructure:"python_etl"`
}

type categoryEntry struct {
	Name   string      `mapstructure:"name"`
	Tables []TableSpec `mapstructure:"tables"`
}

type fileConfig struct {
	Environments []environmentEntry `mapstructure:"environments"`
	Categories   []categoryEntry    `mapstructure:"categories"`
	Compare      CompareConfig      `mapstructure:"compare"`
	Listen       string             `mapstructure:"listen"`
}

// Load reads the configuration file at path and applies environment variable
// overrides for credentials.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("compare.batch_size", DefaultBatchSize)
	v.SetDefault("compare.workers", DefaultWorkers)
	v.SetDefault("compare.trim_padding", "both")
	v.SetDefault("listen", ":8080")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var raw fileConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg := Config{
		Environments: make(map[string]EnvironmentConfig, len(raw.Environments)),
		Categories:   make(map[string]CategoryConfig, len(raw.Categories)),
		Compare:      raw.Compare,
		Listen:       raw.Listen,
	}
	for _, e := range raw.Environments {
		if e.Name == "" {
			return nil, fmt.Errorf("config declares an environment with no name")
		}
		if _, dup := cfg.Environments[e.Name]; dup {
			return nil, fmt.Errorf("duplicate environment: %s", e.Name)
		}
		cfg.Environments[e.Name] = EnvironmentConfig{Informatica: e.Informatica, PythonETL: e.PythonETL}
	}
	for _, c := range raw.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("config declares a category with no name")
		}
		if _, dup := cfg.Categories[c.Name]; dup {
			return nil, fmt.Errorf("duplicate category: %s", c.Name)
		}
		cfg.Categories[c.Name] = CategoryConfig{Tables: c.Tables}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides fills credentials from the process environment using the
// same variable names as the legacy deployment (DEV_INFORMATICA_USER, ...).
func applyEnvOverrides(cfg *Config) {
	for envName, prefix := range envPrefixes {
		env, ok := cfg.Environments[envName]
		if !ok {
			continue
		}
		overrideDatabase(&env.Informatica, prefix+"_INFORMATICA")
		overrideDatabase(&env.PythonETL, prefix+"_PYTHON_ETL")
		cfg.Environments[envName] = env
	}
}

func overrideDatabase(db *DatabaseConfig, prefix string) {
	if v := os.Getenv(prefix + "_USER"); v != "" {
		db.User = v
	}
	if v := os.Getenv(prefix + "_PASSWORD"); v != "" {
		db.Password = v
	}
	if v := os.Getenv(prefix + "_DSN"); v != "" {
		applyDSN(db, v)
	}
}

// applyDSN parses the legacy host:port/service DSN shorthand.
func applyDSN(db *DatabaseConfig, dsn string) {
	hostPort, service, found := strings.Cut(dsn, "/")
	if found && service != "" {
		db.Service = service
	}
	host, port, found := strings.Cut(hostPort, ":")
	if host != "" {
		db.Host = host
	}
	if found {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil {
			db.Port = p
		}
	}
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if len(c.Environments) == 0 {
		return fmt.Errorf("config declares no environments")
	}
	for name, cat := range c.Categories {
		for _, t := range cat.Tables {
			if t.Name == "" {
				return fmt.Errorf("category %s contains a table with no name", name)
			}
			if len(t.KeyColumns) == 0 {
				return fmt.Errorf("table %s in category %s declares no key columns", t.Name, name)
			}
		}
	}
	if c.Compare.BatchSize <= 0 {
		c.Compare.BatchSize = DefaultBatchSize
	}
	if c.Compare.Workers <= 0 {
		c.Compare.Workers = DefaultWorkers
	}
	switch c.Compare.TrimPadding {
	case "", "both", "none", "source", "target":
	default:
		return fmt.Errorf("invalid compare.trim_padding: %q", c.Compare.TrimPadding)
	}
	return nil
}

// Environment returns the named environment configuration.
func (c *Config) Environment(name string) (EnvironmentConfig, error) {
	env, ok := c.Environments[name]
	if !ok {
		return EnvironmentConfig{}, fmt.Errorf("unknown environment: %s", name)
	}
	return env, nil
}

// Category returns the named category configuration.
func (c *Config) Category(name string) (CategoryConfig, error) {
	cat, ok := c.Categories[name]
	if !ok {
		return CategoryConfig{}, fmt.Errorf("unknown category: %s", name)
	}
	return cat, nil
}

// EnvironmentNames lists environments in a stable order.
func (c *Config) EnvironmentNames() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CategoryNames lists categories in a stable order.
func (c *Config) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveTables resolves explicit table names within a category to their
// specs. With no names given it returns every table in the category. Which
// tables a comparison targets is always an explicit parameter; the category
// only scopes the lookup.
func (c *Config) ResolveTables(category string, names []string) ([]TableSpec, error) {
	cat, err := c.Category(category)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return cat.Tables, nil
	}
	specs := make([]TableSpec, 0, len(names))
	for _, name := range names {
		spec, ok := cat.Table(name)
		if !ok {
			return nil, fmt.Errorf("table %s is not declared in category %s", name, category)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
