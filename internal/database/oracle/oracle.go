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
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	go_ora "github.com/sijms/go-ora/v2"

	"github.com/dbparity/dbparity/internal/config"
	"github.com/dbparity/dbparity/internal/database"
)

// oracleHandler implements database.DialectHandler for Oracle, the database
// both ETL pipelines load into.
type oracleHandler struct{}

var _ database.DialectHandler = (*oracleHandler)(nil)

func (h oracleHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	service := cfg.Service
	if service == "" {
		service = cfg.DBName
	}
	connStr := go_ora.BuildUrl(cfg.Host, cfg.Port, service, cfg.User, cfg.Password, nil)

	dbPool, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("sql.Open (oracle): %w", err)
	}
	return dbPool, nil
}

func (h oracleHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	return nil, fmt.Errorf("cloud sql does not host oracle; use the standard oracle dialect")
}

// QuoteIdentifier for Oracle. Unquoted catalog names are stored upper-case,
// so quoting preserves whatever case the configuration declares.
func (h oracleHandler) QuoteIdentifier(name string) string {
	name = strings.Replace(name, `"`, `""`, -1)
	return fmt.Sprintf(`"%s"`, name)
}

// ListColumns for Oracle, in catalog order (column_id) so repeated
// inspections are deterministic.
func (h oracleHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]database.ColumnInfo, error) {
	query := `
		SELECT column_name, data_type, nullable, char_length, data_precision, data_scale
		FROM user_tab_columns
		WHERE table_name = :1
		ORDER BY column_id`

	rows, err := db.Pool.QueryContext(ctx, query, strings.ToUpper(tableName))
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []database.ColumnInfo
	for rows.Next() {
		var colInfo database.ColumnInfo
		var nullable string
		if err := rows.Scan(&colInfo.Name, &colInfo.DataType, &nullable, &colInfo.Length, &colInfo.Precision, &colInfo.Scale); err != nil {
			return nil, fmt.Errorf("error scanning column metadata: %w", err)
		}
		colInfo.Nullable = nullable == "Y"
		columns = append(columns, colInfo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}
	return columns, nil
}

func (h oracleHandler) CountRows(ctx context.Context, db *database.DB, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", h.QuoteIdentifier(strings.ToUpper(tableName)))
	var count int64
	if err := db.Pool.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting rows in %s: %w", tableName, err)
	}
	return count, nil
}

// SelectRows pages through the table with OFFSET/FETCH. orderBy must cover a
// unique key so pages are stable across queries.
func (h oracleHandler) SelectRows(ctx context.Context, db *database.DB, tableName string, columns, orderBy []string, offset, limit int) ([]map[string]interface{}, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s OFFSET :1 ROWS FETCH NEXT :2 ROWS ONLY",
		strings.Join(database.QuoteAll(h, columns), ", "),
		h.QuoteIdentifier(strings.ToUpper(tableName)),
		strings.Join(database.QuoteAll(h, orderBy), ", "),
	)

	rows, err := db.Pool.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error selecting rows from %s: %w", tableName, err)
	}
	defer rows.Close()

	return database.ScanRowMaps(rows)
}

func init() {
	database.RegisterDialectHandler("oracle", oracleHandler{})
}
