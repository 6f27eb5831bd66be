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
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/dbparity/dbparity/internal/config"
	"github.com/dbparity/dbparity/internal/database"
)

// sqlServerHandler implements database.DialectHandler for SQL Server.
type sqlServerHandler struct{}

var _ database.DialectHandler = (*sqlServerHandler)(nil)

func (h sqlServerHandler) CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	return nil, fmt.Errorf("cloud sql sqlserver is not supported; use the standard sqlserver dialect")
}

func (h sqlServerHandler) CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error) {
	query := url.Values{}
	query.Add("database", cfg.DBName)

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}

	dbPool, err := sql.Open("sqlserver", u.String())
	if err != nil {
		return nil, fmt.Errorf("sql.Open (standard sqlserver): %w", err)
	}
	return dbPool, nil
}

// QuoteIdentifier for SQL Server uses brackets.
func (h sqlServerHandler) QuoteIdentifier(name string) string {
	name = strings.Replace(name, "]", "]]", -1)
	return fmt.Sprintf("[%s]", name)
}

// ListColumns for SQL Server, in ordinal position order.
func (h sqlServerHandler) ListColumns(ctx context.Context, db *database.DB, tableName string) ([]database.ColumnInfo, error) {
	query := `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE,
		       CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_NAME = @p1
		ORDER BY ORDINAL_POSITION;`

	rows, err := db.Pool.QueryContext(ctx, query, tableName)
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
		colInfo.Nullable = strings.EqualFold(nullable, "YES")
		columns = append(columns, colInfo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}
	return columns, nil
}

func (h sqlServerHandler) CountRows(ctx context.Context, db *database.DB, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT_BIG(*) FROM %s", h.QuoteIdentifier(tableName))
	var count int64
	if err := db.Pool.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting rows in %s: %w", tableName, err)
	}
	return count, nil
}

func (h sqlServerHandler) SelectRows(ctx context.Context, db *database.DB, tableName string, columns, orderBy []string, offset, limit int) ([]map[string]interface{}, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s OFFSET @p1 ROWS FETCH NEXT @p2 ROWS ONLY",
		strings.Join(database.QuoteAll(h, columns), ", "),
		h.QuoteIdentifier(tableName),
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
	database.RegisterDialectHandler("sqlserver", sqlServerHandler{})
}
