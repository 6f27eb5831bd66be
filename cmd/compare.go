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
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dbparity/dbparity/internal/compare"
	"github.com/dbparity/dbparity/internal/runner"
)

var (
	compareCategory string
	compareTables   []string
	compareJSON     bool
	showProgress    bool
)

var compareCmd = &cobra.Command{
	Use:     "compare",
	Short:   "Compare tables between the Informatica and Python ETL sides",
	Example: `dbparity compare -e Development --category securities --tables SECURITY_MASTER,SECURITY_PRICES`,
	RunE:    runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := requireEnvironment(); err != nil {
		return err
	}
	if compareCategory == "" {
		return fmt.Errorf("--category is required (one of: %v)", cfg.CategoryNames())
	}

	specs, err := cfg.ResolveTables(compareCategory, compareTables)
	if err != nil {
		return err
	}

	var sink compare.ProgressSink
	if showProgress {
		sink = compare.SinkFunc(func(p compare.Progress) {
			fmt.Fprintf(os.Stderr, "\r%s: batch %d/%d", p.Table, p.BatchesDone, p.BatchesTotal)
		})
	}

	r := runner.New(cfg, nil, logger)
	results, err := r.CompareTables(cmd.Context(), environment, compareCategory, specs, sink)
	if err != nil {
		return err
	}
	if showProgress {
		fmt.Fprintln(os.Stderr)
	}

	if compareJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"results": results,
			"summary": runner.Summarize(results),
		})
	}

	printTextReport(results)

	summary := runner.Summarize(results)
	if summary.Failed > 0 {
		return fmt.Errorf("%d table comparison(s) failed", summary.Failed)
	}
	if summary.WithDifferences > 0 {
		return fmt.Errorf("%d table(s) have differences", summary.WithDifferences)
	}
	fmt.Printf("All %d table(s) match.\n", summary.Tables)
	return nil
}

func printTextReport(results map[string]*compare.Result) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r := results[name]
		fmt.Printf("--- Table: %s ---\n", r.Table)
		if r.Error != "" {
			fmt.Printf("  FAILED: %s\n", r.Error)
			continue
		}
		fmt.Printf("  Rows: informatica=%d python_etl=%d\n", r.RowCounts.Source, r.RowCounts.Target)
		if !r.HasDifferences {
			fmt.Println("  OK: no differences")
			continue
		}
		for _, d := range r.SchemaDifferences {
			fmt.Printf("  schema: %s %s (informatica: %s, python_etl: %s)\n", d.Column, d.Issue, d.Source, d.Target)
		}
		for _, m := range r.MissingRows {
			fmt.Printf("  row missing on %s: key=%s\n", m.Side, m.Key)
		}
		for _, v := range r.ValueMismatches {
			fmt.Printf("  value mismatch: key=%s column=%s informatica=%v python_etl=%v\n", v.Key, v.Column, v.SourceValue, v.TargetValue)
		}
		for _, d := range r.DuplicateKeyAnomalies {
			fmt.Printf("  duplicate key on %s: key=%s count=%d\n", d.Side, d.Key, d.Count)
		}
	}
}

func init() {
	compareCmd.Flags().StringVar(&compareCategory, "category", "", "Table category to compare")
	compareCmd.Flags().StringSliceVar(&compareTables, "tables", nil, "Explicit tables within the category (default: all)")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Emit the full comparison report as JSON")
	compareCmd.Flags().BoolVar(&showProgress, "progress", false, "Print batch progress to stderr")
}
