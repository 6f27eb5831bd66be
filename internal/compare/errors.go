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
	"fmt"
	"strings"
)

// SchemaLookupError reports that a table's metadata could not be read.
type SchemaLookupError struct {
	Table string
	Side  string
	Msg   string
	Err   error
}

func (e *SchemaLookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("schema lookup failed for %s table %s: %s", e.Side, e.Table, e.Msg)
	}
	return fmt.Sprintf("schema lookup failed for %s table %s: %s: %v", e.Side, e.Table, e.Msg, e.Err)
}

func (e *SchemaLookupError) Unwrap() error {
	return e.Err
}

// KeyColumnMissingError reports that declared key columns are absent from one
// side's schema, making row alignment undefined.
type KeyColumnMissingError struct {
	Table   string
	Side    string
	Columns []string
}

func (e *KeyColumnMissingError) Error() string {
	return fmt.Sprintf("key column(s) %s missing from %s schema of table %s",
		strings.Join(e.Columns, ", "), e.Side, e.Table)
}

// RowExtractionError reports a failure while streaming rows, typically a
// dropped connection mid-stream. Rows already yielded are discarded.
type RowExtractionError struct {
	Table string
	Side  string
	Batch int
	Err   error
}

func (e *RowExtractionError) Error() string {
	return fmt.Sprintf("row extraction failed for %s table %s (batch %d): %v", e.Side, e.Table, e.Batch, e.Err)
}

func (e *RowExtractionError) Unwrap() error {
	return e.Err
}

// CancelledError reports a cooperative abort, distinct from a failure.
type CancelledError struct {
	Table string
	Err   error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("comparison of table %s cancelled: %v", e.Table, e.Err)
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}
