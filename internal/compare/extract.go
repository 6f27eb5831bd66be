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
	"errors"
	"fmt"

	"github.com/dbparity/dbparity/internal/database"
)

// RowSource is a finite, batched sequence of canonical rows. Next returns a
// nil batch once the sequence is exhausted.
type RowSource interface {
	Next(ctx context.Context) ([]RowRecord, error)
}

// Extractor streams a table's rows in key order, batch_size rows at a time,
// canonicalizing driver values as it goes. Restartable from scratch via
// Reset, not resumable mid-stream.
type Extractor struct {
	adapter   database.Adapter
	schema    TableSchema
	orderBy   []string
	batchSize int
	opts      Options

	offset int
	batch  int
	done   bool
}

// NewExtractor builds an extractor over the given schema. orderBy must be the
// table's key columns so offset pagination is stable.
func NewExtractor(adapter database.Adapter, schema TableSchema, orderBy []string, batchSize int, opts Options) *Extractor {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Extractor{
		adapter:   adapter,
		schema:    schema,
		orderBy:   orderBy,
		batchSize: batchSize,
		opts:      opts,
	}
}

// Reset rewinds the extractor to the start of the table.
func (e *Extractor) Reset() {
	e.offset = 0
	e.batch = 0
	e.done = false
}

// Next pulls and canonicalizes one batch. A nil batch with nil error marks
// the end of the table. Cancellation surfaces as *CancelledError; any other
// failure as *RowExtractionError.
func (e *Extractor) Next(ctx context.Context) ([]RowRecord, error) {
	if e.done {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Table: e.schema.Table, Err: err}
	}

	columns := e.schema.ColumnNames()
	raw, err := e.adapter.SelectRows(ctx, e.schema.Table, columns, e.orderBy, e.offset, e.batchSize)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &CancelledError{Table: e.schema.Table, Err: err}
		}
		return nil, &RowExtractionError{Table: e.schema.Table, Side: e.schema.Side, Batch: e.batch, Err: err}
	}

	if len(raw) == 0 {
		e.done = true
		return nil, nil
	}

	records := make([]RowRecord, len(raw))
	for i, row := range raw {
		rec := make(RowRecord, len(columns))
		for _, col := range e.schema.Columns {
			v, convErr := canonicalValue(col, row[col.Name], e.schema.Side, e.opts)
			if convErr != nil {
				return nil, &RowExtractionError{
					Table: e.schema.Table,
					Side:  e.schema.Side,
					Batch: e.batch,
					Err:   fmt.Errorf("column %s: %w", col.Name, convErr),
				}
			}
			rec[col.Name] = v
		}
		records[i] = rec
	}

	e.offset += len(raw)
	e.batch++
	if len(raw) < e.batchSize {
		e.done = true
	}
	return records, nil
}
