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
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `
environments:
  - name: Development
    informatica:
      dialect: oracle
      host: legacy-dev.example.com
      port: 1521
      service: ORCLDEV
      user: inf_reader
      password: from-file
    python_etl:
      dialect: oracle
      host: etl-dev.example.com
      port: 1521
      service: ETLDEV
      user: etl_reader
      password: from-file
  - name: Production
    informatica:
      dialect: oracle
      host: legacy-prod.example.com
      port: 1521
      service: ORCLPRD
    python_etl:
      dialect: cloudsqlpostgres
      database: etl
      user: etl
      cloudsql_instance_connection_name: proj:region:inst

categories:
  - name: Customer Data
    tables:
      - name: CUSTOMERS
        key_columns: [CUSTOMER_ID]
      - name: ADDRESSES
        key_columns: [CUSTOMER_ID, ADDRESS_SEQ]
  - name: Billing
    tables:
      - name: INVOICES
        key_columns: [INVOICE_ID]

compare:
  batch_size: 500
  workers: 2
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbparity.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, testConfig))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if got := cfg.EnvironmentNames(); len(got) != 2 || got[0] != "Development" || got[1] != "Production" {
		t.Errorf("EnvironmentNames() = %v", got)
	}
	if got := cfg.CategoryNames(); len(got) != 2 || got[0] != "Billing" || got[1] != "Customer Data" {
		t.Errorf("CategoryNames() = %v", got)
	}

	env, err := cfg.Environment("Development")
	if err != nil {
		t.Fatalf("Environment() unexpected error: %v", err)
	}
	if env.Informatica.Host != "legacy-dev.example.com" || env.Informatica.Service != "ORCLDEV" {
		t.Errorf("informatica side got %+v", env.Informatica)
	}

	db, err := env.Database(SidePythonETL)
	if err != nil {
		t.Fatalf("Database() unexpected error: %v", err)
	}
	if db.Host != "etl-dev.example.com" {
		t.Errorf("Database(python_etl) got %+v", db)
	}
	if _, err := env.Database("sideways"); err == nil {
		t.Error("Database() expected error for unknown side")
	}

	if cfg.Compare.BatchSize != 500 || cfg.Compare.Workers != 2 {
		t.Errorf("compare settings got %+v", cfg.Compare)
	}
	if cfg.Compare.TrimPadding != "both" {
		t.Errorf("trim_padding default got %q, want both", cfg.Compare.TrimPadding)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("listen default got %q", cfg.Listen)
	}
}

func TestLoadDefaults(t *testing.T) {
	minimal := `
environments:
  - name: Development
    informatica:
      dialect: oracle
    python_etl:
      dialect: oracle
`
	cfg, err := Load(writeTestConfig(t, minimal))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Compare.BatchSize != DefaultBatchSize {
		t.Errorf("batch_size default got %d, want %d", cfg.Compare.BatchSize, DefaultBatchSize)
	}
	if cfg.Compare.Workers != DefaultWorkers {
		t.Errorf("workers default got %d, want %d", cfg.Compare.Workers, DefaultWorkers)
	}
}

func TestLoadDuplicateEnvironment(t *testing.T) {
	dup := `
environments:
  - name: Development
    informatica:
      dialect: oracle
    python_etl:
      dialect: oracle
  - name: Development
    informatica:
      dialect: oracle
    python_etl:
      dialect: oracle
`
	if _, err := Load(writeTestConfig(t, dup)); err == nil {
		t.Fatal("Load() expected error for duplicate environment name")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DEV_INFORMATICA_USER", "secret_user")
	t.Setenv("DEV_INFORMATICA_PASSWORD", "secret_pass")
	t.Setenv("DEV_PYTHON_ETL_DSN", "etl-new.example.com:1522/ETLNEW")

	cfg, err := Load(writeTestConfig(t, testConfig))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	env, _ := cfg.Environment("Development")
	if env.Informatica.User != "secret_user" || env.Informatica.Password != "secret_pass" {
		t.Errorf("env override not applied: %+v", env.Informatica)
	}
	if env.PythonETL.Host != "etl-new.example.com" || env.PythonETL.Port != 1522 || env.PythonETL.Service != "ETLNEW" {
		t.Errorf("DSN override not applied: %+v", env.PythonETL)
	}
	// Untouched fields keep their file values.
	if env.PythonETL.User != "etl_reader" {
		t.Errorf("DSN override clobbered user: %+v", env.PythonETL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Valid", func(c *Config) {}, false},
		{"No environments", func(c *Config) { c.Environments = nil }, true},
		{"Table without key columns", func(c *Config) {
			c.Categories["Bad"] = CategoryConfig{Tables: []TableSpec{{Name: "T"}}}
		}, true},
		{"Table without name", func(c *Config) {
			c.Categories["Bad"] = CategoryConfig{Tables: []TableSpec{{KeyColumns: []string{"ID"}}}}
		}, true},
		{"Bad trim padding", func(c *Config) { c.Compare.TrimPadding = "sideways" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Environments: map[string]EnvironmentConfig{"Development": {}},
				Categories:   map[string]CategoryConfig{},
				Compare:      CompareConfig{BatchSize: 10, Workers: 1, TrimPadding: "both"},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveTables(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, testConfig))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	t.Run("All tables in category", func(t *testing.T) {
		specs, err := cfg.ResolveTables("Customer Data", nil)
		if err != nil {
			t.Fatalf("ResolveTables() unexpected error: %v", err)
		}
		if len(specs) != 2 || specs[0].Name != "CUSTOMERS" || specs[1].Name != "ADDRESSES" {
			t.Errorf("ResolveTables() = %+v", specs)
		}
	})

	t.Run("Explicit subset, case-insensitive", func(t *testing.T) {
		specs, err := cfg.ResolveTables("Customer Data", []string{"addresses"})
		if err != nil {
			t.Fatalf("ResolveTables() unexpected error: %v", err)
		}
		if len(specs) != 1 || specs[0].Name != "ADDRESSES" {
			t.Errorf("ResolveTables() = %+v", specs)
		}
		if len(specs[0].KeyColumns) != 2 {
			t.Errorf("key columns = %v", specs[0].KeyColumns)
		}
	})

	t.Run("Unknown table", func(t *testing.T) {
		if _, err := cfg.ResolveTables("Customer Data", []string{"INVOICES"}); err == nil {
			t.Error("ResolveTables() expected error for table outside the category")
		}
	})

	t.Run("Unknown category", func(t *testing.T) {
		if _, err := cfg.ResolveTables("Shipping", nil); err == nil {
			t.Error("ResolveTables() expected error for unknown category")
		}
	})
}
