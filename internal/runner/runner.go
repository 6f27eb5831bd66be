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
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dbparity/dbparity/internal/compare"
	"github.com/dbparity/dbparity/internal/config"
	"github.com/dbparity/dbparity/internal/database"
)

// ConnectFunc opens one adapter for a side of an environment. Tests inject
// fakes through it; production uses Connect.
type ConnectFunc func(ctx context.Context, env config.EnvironmentConfig, side config.Side) (database.Adapter, error)

// Connect is the default ConnectFunc backed by the dialect registry.
func Connect(ctx context.Context, env config.EnvironmentConfig, side config.Side) (database.Adapter, error) {
	dbCfg, err := env.Database(side)
	if err != nil {
		return nil, err
	}
	return database.New(ctx, dbCfg)
}

// Runner drives multi-table comparisons. Each table comparison is an
// independent unit of work holding its own pair of connections; a failure in
// one never aborts the others.
type Runner struct {
	cfg     *config.Config
	connect ConnectFunc
	log     *zap.Logger
}

func New(cfg *config.Config, connect ConnectFunc, logger *zap.Logger) *Runner {
	if connect == nil {
		connect = Connect
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, connect: connect, log: logger}
}

// Summary aggregates per-table outcomes across one batch.
type Summary struct {
	Tables           int `json:"tables"`
	WithDifferences  int `json:"with_differences"`
	Failed           int `json:"failed"`
	MissingRows      int `json:"missing_rows"`
	ValueMismatches  int `json:"value_mismatches"`
	SchemaDiffs      int `json:"schema_differences"`
	DuplicateKeyRows int `json:"duplicate_key_anomalies"`
}

// Summarize folds a result set into totals. Aggregation across tables is the
// caller's concern, not the engine's, so it lives here.
func Summarize(results map[string]*compare.Result) Summary {
	var s Summary
	for _, r := range results {
		s.Tables++
		if r.Error != "" {
			s.Failed++
			continue
		}
		if r.HasDifferences {
			s.WithDifferences++
		}
		s.MissingRows += len(r.MissingRows)
		s.ValueMismatches += len(r.ValueMismatches)
		s.SchemaDiffs += len(r.SchemaDifferences)
		s.DuplicateKeyRows += len(r.DuplicateKeyAnomalies)
	}
	return s
}

// CompareTables compares each spec'd table in the given environment, at most
// cfg.Compare.Workers tables in flight at once. Per-table failures are
// recorded in that table's result; the batch always returns a result for
// every requested table unless the context itself is cancelled before a
// table starts.
func (r *Runner) CompareTables(ctx context.Context, envName, category string, specs []config.TableSpec, sink compare.ProgressSink) (map[string]*compare.Result, error) {
	env, err := r.cfg.Environment(envName)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no tables to compare")
	}

	orch := compare.NewOrchestrator(
		r.cfg.Compare.BatchSize,
		compare.Options{
			TrimPadding:      r.cfg.Compare.TrimPadding,
			TreatEmptyAsNull: r.cfg.Compare.TreatEmptyAsNull,
		},
		sink,
		r.log,
	)

	results := make(map[string]*compare.Result, len(specs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Compare.Workers)

	for _, spec := range specs {
		spec := spec
		g.Go(func() error {
			result := r.compareOne(gctx, orch, env, category, spec)
			mu.Lock()
			results[spec.Name] = result
			mu.Unlock()
			// Errors are per-table data, never group failures.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// compareOne runs a single table comparison with its own connection pair,
// released deterministically on every exit path.
func (r *Runner) compareOne(ctx context.Context, orch *compare.Orchestrator, env config.EnvironmentConfig, category string, spec config.TableSpec) *compare.Result {
	log := r.log.With(zap.String("table", spec.Name))

	source, err := r.connect(ctx, env, config.SideInformatica)
	if err != nil {
		log.Error("failed to connect to informatica side", zap.Error(err))
		return failedResult(spec.Name, category, fmt.Errorf("informatica connection: %w", err))
	}
	defer source.Close()

	target, err := r.connect(ctx, env, config.SidePythonETL)
	if err != nil {
		log.Error("failed to connect to python_etl side", zap.Error(err))
		return failedResult(spec.Name, category, fmt.Errorf("python_etl connection: %w", err))
	}
	defer target.Close()

	result, err := orch.CompareTable(ctx, source, target, compare.Request{
		Table:      spec.Name,
		Category:   category,
		KeyColumns: spec.KeyColumns,
	})
	if err != nil {
		if compare.IsCancelled(err) {
			log.Warn("table comparison cancelled")
		} else {
			log.Error("table comparison failed", zap.Error(err))
		}
	}
	return result
}

func failedResult(table, category string, err error) *compare.Result {
	return &compare.Result{
		Table:                 table,
		Category:              category,
		SchemaDifferences:     []compare.ColumnDifference{},
		MissingRows:           []compare.MissingRow{},
		ValueMismatches:       []compare.ValueMismatch{},
		DuplicateKeyAnomalies: []compare.DuplicateKeyAnomaly{},
		Error:                 err.Error(),
	}
}

// ConnectionStatus reports side-by-side reachability for one environment.
type ConnectionStatus struct {
	Informatica      bool    `json:"informatica"`
	PythonETL        bool    `json:"pythonEtl"`
	InformaticaError string  `json:"informaticaError,omitempty"`
	PythonETLError   string  `json:"pythonEtlError,omitempty"`
	Timestamp        float64 `json:"timestamp"`
}

// CheckConnections pings both sides of an environment.
func (r *Runner) CheckConnections(ctx context.Context, envName string) (ConnectionStatus, error) {
	env, err := r.cfg.Environment(envName)
	if err != nil {
		return ConnectionStatus{}, err
	}

	status := ConnectionStatus{Timestamp: float64(time.Now().UnixNano()) / float64(time.Second)}

	if pingErr := r.pingSide(ctx, env, config.SideInformatica); pingErr != nil {
		status.InformaticaError = pingErr.Error()
	} else {
		status.Informatica = true
	}
	if pingErr := r.pingSide(ctx, env, config.SidePythonETL); pingErr != nil {
		status.PythonETLError = pingErr.Error()
	} else {
		status.PythonETL = true
	}
	return status, nil
}

func (r *Runner) pingSide(ctx context.Context, env config.EnvironmentConfig, side config.Side) error {
	adapter, err := r.connect(ctx, env, side)
	if err != nil {
		return err
	}
	defer adapter.Close()
	return adapter.Ping(ctx)
}
