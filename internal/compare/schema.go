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
package compare

import (
	"context"
	"fmt"

	"github.com/dbparity/dbparity/internal/database"
)

// Inspect reads column metadata for a table from one side. Pure read; the
// returned schema preserves the database's catalog ordering so repeated
// inspections in a session diff deterministically.
func Inspect(ctx context.Context, adapter database.Adapter, tableName, side string) (TableSchema, error) {
	cols, err := adapter.FetchColumns(ctx, tableName)
	if err != nil {
		return TableSchema{}, &SchemaLookupError{
			Table: tableName,
			Side:  side,
			Msg:   "metadata query failed",
			Err:   err,
		}
	}
	if len(cols) == 0 {
		return TableSchema{}, &SchemaLookupError{
			Table: tableName,
			Side:  side,
			Msg:   "table does not exist or has no readable columns",
			Err:   nil,
		}
	}

	schema := TableSchema{
		Table:   tableName,
		Side:    side,
		Columns: make([]ColumnDescriptor, 0, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for _, col := range cols {
		if _, exists := schema.index[col.Name]; exists {
			return TableSchema{}, &SchemaLookupError{
				Table: tableName,
				Side:  side,
				Msg:   fmt.Sprintf("duplicate column name %q in catalog metadata", col.Name),
			}
		}
		desc := ColumnDescriptor{
			Name:      col.Name,
			DataType:  col.DataType,
			Nullable:  col.Nullable,
			Length:    int(col.Length.Int64),
			Precision: int(col.Precision.Int64),
			Scale:     int(col.Scale.Int64),
		}
		desc.Type = NormalizeColumnType(adapter.Dialect(), col.DataType, desc.Length, desc.Precision, desc.Scale)
		schema.index[col.Name] = len(schema.Columns)
		schema.Columns = append(schema.Columns, desc)
	}
	return schema, nil
}

// DiffSchemas produces column-level discrepancies between two sides.
// Emission order follows source-schema column order, with target-only
// additions appended afterward, so output is reproducible across runs.
func DiffSchemas(source, target TableSchema) []ColumnDifference {
	diffs := []ColumnDifference{}

	for _, srcCol := range source.Columns {
		tgtCol, ok := target.Column(srcCol.Name)
		if !ok {
			diffs = append(diffs, ColumnDifference{
				Column: srcCol.Name,
				Issue:  IssueMissingOnTarget,
				Source: srcCol.Type.String(),
			})
			continue
		}
		if !srcCol.Type.Equivalent(tgtCol.Type) {
			diffs = append(diffs, ColumnDifference{
				Column: srcCol.Name,
				Issue:  IssueTypeMismatch,
				Source: srcCol.Type.String(),
				Target: tgtCol.Type.String(),
			})
		}
		if srcCol.Nullable != tgtCol.Nullable {
			diffs = append(diffs, ColumnDifference{
				Column: srcCol.Name,
				Issue:  IssueNullabilityMismatch,
				Source: nullability(srcCol.Nullable),
				Target: nullability(tgtCol.Nullable),
			})
		}
	}

	for _, tgtCol := range target.Columns {
		if _, ok := source.Column(tgtCol.Name); !ok {
			diffs = append(diffs, ColumnDifference{
				Column: tgtCol.Name,
				Issue:  IssueMissingOnSource,
				Target: tgtCol.Type.String(),
			})
		}
	}

	return diffs
}

func nullability(nullable bool) string {
	if nullable {
		return "nullable"
	}
	return "not null"
}

// sharedColumns returns the column names present on both sides, in source
// order. Value comparison is defined over this set.
func sharedColumns(source, target TableSchema) []string {
	shared := make([]string, 0, len(source.Columns))
	for _, col := range source.Columns {
		if _, ok := target.Column(col.Name); ok {
			shared = append(shared, col.Name)
		}
	}
	return shared
}
