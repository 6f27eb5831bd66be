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

// Sides of a comparison. The informatica side is the source of truth; the
// python_etl side is under validation.
const (
	SideSource = "source"
	SideTarget = "target"
)

// ColumnDescriptor is an immutable snapshot of one column at inspection time.
type ColumnDescriptor struct {
	Name      string `json:"name"`
	DataType  string `json:"data_type"`
	Nullable  bool   `json:"nullable"`
	Precision int    `json:"precision,omitempty"`
	Scale     int    `json:"scale,omitempty"`
	Length    int    `json:"length,omitempty"`

	// Type is the normalized view the differ compares on.
	Type NormalizedType `json:"-"`
}

// TableSchema is the ordered column set of one table on one side. Column
// names are unique within a schema; Inspect enforces this.
type TableSchema struct {
	Table   string
	Side    string
	Columns []ColumnDescriptor

	index map[string]int
}

// Column returns the descriptor for name, if present.
func (s TableSchema) Column(name string) (ColumnDescriptor, bool) {
	i, ok := s.index[name]
	if !ok {
		return ColumnDescriptor{}, false
	}
	return s.Columns[i], true
}

// ColumnNames returns the column names in catalog order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// MissingColumns returns the subset of names absent from the schema,
// preserving the order given.
func (s TableSchema) MissingColumns(names []string) []string {
	var missing []string
	for _, name := range names {
		if _, ok := s.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Column difference issues.
const (
	IssueTypeMismatch        = "type_mismatch"
	IssueNullabilityMismatch = "nullability_mismatch"
	IssueMissingOnSource     = "missing_on_source"
	IssueMissingOnTarget     = "missing_on_target"
)

// ColumnDifference is one column-level schema discrepancy.
type ColumnDifference struct {
	Column string `json:"column"`
	Issue  string `json:"issue"`
	// Source and Target carry the normalized type rendering of the side(s)
	// that have the column, for explainability.
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// RowRecord maps column names to canonicalized scalar values. Every record
// from one extraction carries the same key set as its schema's column names.
type RowRecord map[string]interface{}

// MissingRow is a row present on exactly one side. Side names the side the
// row is MISSING from: a source-only row has Side "target".
type MissingRow struct {
	Side string    `json:"side"`
	Key  string    `json:"key"`
	Row  RowRecord `json:"row"`
}

// ValueMismatch is one differing column value for a row present on both
// sides. One mismatch is emitted per differing column, not per row.
type ValueMismatch struct {
	Key         string      `json:"key"`
	Column      string      `json:"column"`
	SourceValue interface{} `json:"source_value"`
	TargetValue interface{} `json:"target_value"`
}

// DuplicateKeyAnomaly records a key that appeared more than once on one
// side. Non-fatal: recorded in the result, comparison continues.
type DuplicateKeyAnomaly struct {
	Side  string `json:"side"`
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RowCounts holds the total row count of each side.
type RowCounts struct {
	Source int64 `json:"source"`
	Target int64 `json:"target"`
}

// Result is the full, transient report for one table comparison. It is
// created fresh per invocation and never mutated after being returned.
type Result struct {
	Table                 string                `json:"table"`
	Category              string                `json:"category,omitempty"`
	RowCounts             RowCounts             `json:"row_counts"`
	HasDifferences        bool                  `json:"has_differences"`
	SchemaDifferences     []ColumnDifference    `json:"schema_differences"`
	MissingRows           []MissingRow          `json:"missing_rows"`
	ValueMismatches       []ValueMismatch       `json:"value_mismatches"`
	DuplicateKeyAnomalies []DuplicateKeyAnomaly `json:"duplicate_key_anomalies"`
	// Error is set on a failed comparison; the diff sections are then empty,
	// which is distinguishable from a successful zero-difference result.
	Error string `json:"error,omitempty"`
}

// newResult returns an empty result with non-nil diff slices so JSON renders
// [] rather than null.
func newResult(table, category string) *Result {
	return &Result{
		Table:                 table,
		Category:              category,
		SchemaDifferences:     []ColumnDifference{},
		MissingRows:           []MissingRow{},
		ValueMismatches:       []ValueMismatch{},
		DuplicateKeyAnomalies: []DuplicateKeyAnomaly{},
	}
}
