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
	"sort"
)

// RowDiff is the row-level outcome of one table comparison.
type RowDiff struct {
	MissingRows           []MissingRow
	ValueMismatches       []ValueMismatch
	DuplicateKeyAnomalies []DuplicateKeyAnomaly
}

// DiffRows aligns rows between the two sides by key. The target side is
// fully indexed by encoded key, then the source side is streamed against the
// index: absent keys become rows missing on the target, matched keys get a
// per-column value comparison, and whatever remains in the index afterwards
// is missing on the source. Runs in O(source+target) time with auxiliary
// memory proportional to the target side, never a nested loop.
//
// Duplicate keys on either side are surfaced as anomalies; the extra
// occurrence is additionally reported as a row the other side is missing
// rather than silently overwriting the index entry.
func DiffRows(ctx context.Context, source, target RowSource, keyColumns, compareColumns []string) (*RowDiff, error) {
	diff := &RowDiff{
		MissingRows:           []MissingRow{},
		ValueMismatches:       []ValueMismatch{},
		DuplicateKeyAnomalies: []DuplicateKeyAnomaly{},
	}

	index := make(map[string]RowRecord)
	dupCounts := make(map[string]map[string]int)

	recordDuplicate := func(side, key string) {
		if dupCounts[side] == nil {
			dupCounts[side] = make(map[string]int)
		}
		dupCounts[side][key]++
	}

	for {
		batch, err := target.Next(ctx)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			break
		}
		for _, rec := range batch {
			key := encodeKey(rec, keyColumns)
			if _, exists := index[key]; exists {
				recordDuplicate(SideTarget, key)
				// The extra target occurrence has no source counterpart.
				diff.MissingRows = append(diff.MissingRows, MissingRow{Side: SideSource, Key: key, Row: rec})
				continue
			}
			index[key] = rec
		}
	}

	seenSource := make(map[string]struct{})
	for {
		batch, err := source.Next(ctx)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			break
		}
		for _, rec := range batch {
			key := encodeKey(rec, keyColumns)
			if _, dup := seenSource[key]; dup {
				recordDuplicate(SideSource, key)
				diff.MissingRows = append(diff.MissingRows, MissingRow{Side: SideTarget, Key: key, Row: rec})
				continue
			}
			seenSource[key] = struct{}{}

			tgtRec, ok := index[key]
			if !ok {
				diff.MissingRows = append(diff.MissingRows, MissingRow{Side: SideTarget, Key: key, Row: rec})
				continue
			}
			delete(index, key)

			for _, col := range compareColumns {
				srcVal := rec[col]
				tgtVal := tgtRec[col]
				if !valuesEqual(srcVal, tgtVal) {
					diff.ValueMismatches = append(diff.ValueMismatches, ValueMismatch{
						Key:         key,
						Column:      col,
						SourceValue: srcVal,
						TargetValue: tgtVal,
					})
				}
			}
		}
	}

	// Leftover target keys, sorted for deterministic output regardless of
	// map iteration order.
	leftover := make([]string, 0, len(index))
	for key := range index {
		leftover = append(leftover, key)
	}
	sort.Strings(leftover)
	for _, key := range leftover {
		diff.MissingRows = append(diff.MissingRows, MissingRow{Side: SideSource, Key: key, Row: index[key]})
	}

	for _, side := range []string{SideSource, SideTarget} {
		keys := make([]string, 0, len(dupCounts[side]))
		for key := range dupCounts[side] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			diff.DuplicateKeyAnomalies = append(diff.DuplicateKeyAnomalies, DuplicateKeyAnomaly{
				Side:  side,
				Key:   key,
				Count: dupCounts[side][key] + 1,
			})
		}
	}

	return diff, nil
}
