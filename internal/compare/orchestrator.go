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

	"go.uber.org/zap"

	"github.com/dbparity/dbparity/internal/database"
)

// Orchestrator sequences one table comparison: SchemaFetch, SchemaDiff,
// RowCountFetch, RowStream, RowDiff, Assemble, with failure reachable from
// any step. It holds no per-table state; one Orchestrator may run many
// tables, each invocation producing a fresh Result.
type Orchestrator struct {
	BatchSize int
	Options   Options
	Progress  ProgressSink
	Logger    *zap.Logger
}

// NewOrchestrator returns an orchestrator with the given batch size and
// comparison options. A nil logger or sink is replaced with a no-op.
func NewOrchestrator(batchSize int, opts Options, sink ProgressSink, logger *zap.Logger) *Orchestrator {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		BatchSize: batchSize,
		Options:   opts,
		Progress:  sink,
		Logger:    logger,
	}
}

// Request identifies one table comparison.
type Request struct {
	Table      string
	Category   string
	KeyColumns []string
}

// CompareTable compares one table across two already-open connections and
// assembles the diff record. On failure the returned Result carries the
// error string and empty diff sections, and the error itself is returned for
// the caller's taxonomy checks; the failure never affects other tables.
func (o *Orchestrator) CompareTable(ctx context.Context, source, target database.Adapter, req Request) (*Result, error) {
	log := o.Logger.With(zap.String("table", req.Table))
	result := newResult(req.Table, req.Category)

	if len(req.KeyColumns) == 0 {
		err := &KeyColumnMissingError{Table: req.Table, Side: "configuration", Columns: []string{"(none declared)"}}
		return failResult(result, err), err
	}

	// SchemaFetch
	srcSchema, err := Inspect(ctx, source, req.Table, SideSource)
	if err != nil {
		return failResult(result, err), err
	}
	tgtSchema, err := Inspect(ctx, target, req.Table, SideTarget)
	if err != nil {
		return failResult(result, err), err
	}

	// SchemaDiff
	result.SchemaDifferences = DiffSchemas(srcSchema, tgtSchema)
	log.Debug("schema diff complete", zap.Int("differences", len(result.SchemaDifferences)))

	// Row alignment is undefined without the key columns on both sides;
	// short-circuit rather than comparing rows against a missing key.
	if missing := srcSchema.MissingColumns(req.KeyColumns); len(missing) > 0 {
		err := &KeyColumnMissingError{Table: req.Table, Side: SideSource, Columns: missing}
		return failResult(result, err), err
	}
	if missing := tgtSchema.MissingColumns(req.KeyColumns); len(missing) > 0 {
		err := &KeyColumnMissingError{Table: req.Table, Side: SideTarget, Columns: missing}
		return failResult(result, err), err
	}

	// RowCountFetch
	srcCount, err := source.CountRows(ctx, req.Table)
	if err != nil {
		err = wrapExtractionErr(req.Table, SideSource, err)
		return failResult(result, err), err
	}
	tgtCount, err := target.CountRows(ctx, req.Table)
	if err != nil {
		err = wrapExtractionErr(req.Table, SideTarget, err)
		return failResult(result, err), err
	}
	result.RowCounts = RowCounts{Source: srcCount, Target: tgtCount}

	// RowStream + RowDiff. Both sides stream in key order; progress counts
	// batches consumed out of the estimated total.
	state := &progressState{
		table: req.Table,
		sink:  o.Progress,
		total: estimateBatches(srcCount, o.BatchSize) + estimateBatches(tgtCount, o.BatchSize),
	}
	srcRows := &countingSource{
		inner: NewExtractor(source, srcSchema, req.KeyColumns, o.BatchSize, o.Options),
		state: state,
	}
	tgtRows := &countingSource{
		inner: NewExtractor(target, tgtSchema, req.KeyColumns, o.BatchSize, o.Options),
		state: state,
	}

	rowDiff, err := DiffRows(ctx, srcRows, tgtRows, req.KeyColumns, sharedColumns(srcSchema, tgtSchema))
	if err != nil {
		// Partial results already accumulated are discarded; a failed
		// extraction invalidates the whole table's result.
		return failResult(result, err), err
	}

	// Assemble
	result.MissingRows = rowDiff.MissingRows
	result.ValueMismatches = rowDiff.ValueMismatches
	result.DuplicateKeyAnomalies = rowDiff.DuplicateKeyAnomalies
	result.HasDifferences = len(result.SchemaDifferences) > 0 ||
		len(result.MissingRows) > 0 ||
		len(result.ValueMismatches) > 0

	log.Info("table comparison complete",
		zap.Int64("source_rows", srcCount),
		zap.Int64("target_rows", tgtCount),
		zap.Bool("has_differences", result.HasDifferences),
	)
	return result, nil
}

// IsCancelled reports whether err represents a cooperative abort rather than
// a failure.
func IsCancelled(err error) bool {
	var cancelled *CancelledError
	return errors.As(err, &cancelled)
}

func estimateBatches(rows int64, batchSize int) int {
	if batchSize <= 0 {
		return 0
	}
	return int((rows + int64(batchSize) - 1) / int64(batchSize))
}

func wrapExtractionErr(table, side string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &CancelledError{Table: table, Err: err}
	}
	return &RowExtractionError{Table: table, Side: side, Err: err}
}

// failResult empties the diff sections and records the error, keeping the
// failed shape distinguishable from a successful zero-difference result.
func failResult(r *Result, err error) *Result {
	r.SchemaDifferences = []ColumnDifference{}
	r.MissingRows = []MissingRow{}
	r.ValueMismatches = []ValueMismatch{}
	r.DuplicateKeyAnomalies = []DuplicateKeyAnomaly{}
	r.HasDifferences = false
	r.RowCounts = RowCounts{}
	r.Error = err.Error()
	return r
}
