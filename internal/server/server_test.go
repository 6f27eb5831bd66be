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
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbparity/dbparity/internal/config"
	"github.com/dbparity/dbparity/internal/database"
	"github.com/dbparity/dbparity/internal/runner"
)

type fakeAdapter struct {
	tables  map[string][]map[string]interface{}
	pingErr error
}

func (f *fakeAdapter) FetchColumns(ctx context.Context, tableName string) ([]database.ColumnInfo, error) {
	if _, ok := f.tables[tableName]; !ok {
		return nil, nil
	}
	return []database.ColumnInfo{
		{Name: "ID", DataType: "NUMBER", Precision: sql.NullInt64{Int64: 10, Valid: true}},
		{Name: "NAME", DataType: "VARCHAR2", Nullable: true, Length: sql.NullInt64{Int64: 50, Valid: true}},
	}, nil
}

func (f *fakeAdapter) CountRows(ctx context.Context, tableName string) (int64, error) {
	return int64(len(f.tables[tableName])), nil
}

func (f *fakeAdapter) SelectRows(ctx context.Context, tableName string, columns, orderBy []string, offset, limit int) ([]map[string]interface{}, error) {
	rows := f.tables[tableName]
	if offset >= len(rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (f *fakeAdapter) Dialect() string                { return "oracle" }
func (f *fakeAdapter) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakeAdapter) Close() error                   { return nil }

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Environments: map[string]config.EnvironmentConfig{
			"Development": {},
			"Production":  {},
		},
		Categories: map[string]config.CategoryConfig{
			"Customer Data": {Tables: []config.TableSpec{
				{Name: "CUSTOMERS", KeyColumns: []string{"ID"}},
			}},
		},
		Compare: config.CompareConfig{BatchSize: 100, Workers: 2},
	}

	connect := func(ctx context.Context, env config.EnvironmentConfig, side config.Side) (database.Adapter, error) {
		rows := map[string][]map[string]interface{}{
			"CUSTOMERS": {{"ID": int64(1), "NAME": "A"}},
		}
		if side == config.SidePythonETL {
			rows["CUSTOMERS"] = []map[string]interface{}{{"ID": int64(1), "NAME": "B"}}
		}
		return &fakeAdapter{tables: rows}, nil
	}

	return New(cfg, runner.New(cfg, connect, nil), nil)
}

func TestEnvironmentsEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/environments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Environments []string `json:"environments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Development", "Production"}, body.Environments)
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Customer Data"}, body.Categories)
}

func TestCheckConnectionsEndpoint(t *testing.T) {
	srv := testServer(t)

	t.Run("Missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/check-connections", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/check-connections", nil)
		req.Header.Set("Environment", "Development")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var status runner.ConnectionStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		assert.True(t, status.Informatica)
		assert.True(t, status.PythonETL)
	})

	t.Run("Unknown environment", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/check-connections", nil)
		req.Header.Set("Environment", "Staging")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTablesEndpoint(t *testing.T) {
	srv := testServer(t)

	t.Run("Missing parameters", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tables", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tables?environment=Development&category=Customer+Data", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Tables []struct {
				Name       string   `json:"name"`
				KeyColumns []string `json:"key_columns"`
			} `json:"tables"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Tables, 1)
		assert.Equal(t, "CUSTOMERS", body.Tables[0].Name)
		assert.Equal(t, []string{"ID"}, body.Tables[0].KeyColumns)
	})

	t.Run("Unknown category", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tables?environment=Development&category=Shipping", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCompareBatchEndpoint(t *testing.T) {
	srv := testServer(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/compare/batch", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Success", func(t *testing.T) {
		rec := post(`{"environment":"Development","category":"Customer Data","tables":["CUSTOMERS"]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Results map[string]struct {
				HasDifferences  bool `json:"has_differences"`
				ValueMismatches []struct {
					Column string `json:"column"`
				} `json:"value_mismatches"`
			} `json:"results"`
			Summary runner.Summary `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Contains(t, body.Results, "CUSTOMERS")
		assert.True(t, body.Results["CUSTOMERS"].HasDifferences)
		require.Len(t, body.Results["CUSTOMERS"].ValueMismatches, 1)
		assert.Equal(t, "NAME", body.Results["CUSTOMERS"].ValueMismatches[0].Column)
		assert.Equal(t, 1, body.Summary.Tables)
		assert.Equal(t, 1, body.Summary.WithDifferences)
	})

	t.Run("Missing fields", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post(`{}`).Code)
		assert.Equal(t, http.StatusBadRequest, post(`{"environment":"Development"}`).Code)
		assert.Equal(t, http.StatusBadRequest, post(`{"environment":"Development","category":"Customer Data"}`).Code)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, post(`not json`).Code)
	})

	t.Run("Table outside category", func(t *testing.T) {
		rec := post(`{"environment":"Development","category":"Customer Data","tables":["INVOICES"]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/compare/batch", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
