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
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamps are normalized to UTC at microsecond precision; sub-microsecond
// digits differ between drivers and are never ETL-significant here.
const timestampPrecision = time.Microsecond

// Options control value canonicalization and comparison semantics for one
// comparison run.
type Options struct {
	// TrimPadding selects which sides have trailing blanks trimmed from
	// fixed-width string columns: "both", "none", "source" or "target".
	// Default trims both sides identically so padding conventions alone never
	// produce mismatches.
	TrimPadding string
	// TreatEmptyAsNull makes NULL compare equal to the empty string. Off by
	// default: null vs "" is a true mismatch.
	TreatEmptyAsNull bool
}

func (o Options) trimFor(side string) bool {
	switch o.TrimPadding {
	case "", "both":
		return true
	case "none":
		return false
	default:
		return o.TrimPadding == side
	}
}

// canonicalValue converts a driver-native value into the canonical scalar
// form: nil, string, decimal.Decimal, time.Time (UTC, µs), bool, or a hex
// string for binary. Numeric values keep exact precision; IDs and money must
// never round through float64.
func canonicalValue(col ColumnDescriptor, raw interface{}, side string, opts Options) (interface{}, error) {
	if raw == nil {
		return nil, nil
	}

	switch col.Type.Kind {
	case KindInteger, KindDecimal:
		return canonicalNumber(raw)

	case KindString:
		s, err := canonicalString(raw)
		if err != nil {
			return nil, err
		}
		if col.Type.Fixed && opts.trimFor(side) {
			s = strings.TrimRight(s, " ")
		}
		if opts.TreatEmptyAsNull && s == "" {
			return nil, nil
		}
		return s, nil

	case KindDate, KindTimestamp:
		return canonicalTime(raw)

	case KindBoolean:
		return canonicalBool(raw)

	case KindBinary:
		switch v := raw.(type) {
		case []byte:
			return hex.EncodeToString(v), nil
		case string:
			return hex.EncodeToString([]byte(v)), nil
		}
		return nil, fmt.Errorf("unsupported binary representation %T", raw)
	}

	// Unknown kind: compare on the driver's string rendering.
	return fmt.Sprint(raw), nil
}

func canonicalNumber(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case int64:
		return decimal.NewFromInt(v), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("unparseable numeric value %q: %w", v, err)
		}
		return d, nil
	case []byte:
		d, err := decimal.NewFromString(strings.TrimSpace(string(v)))
		if err != nil {
			return nil, fmt.Errorf("unparseable numeric value %q: %w", string(v), err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("unsupported numeric representation %T", raw)
}

func canonicalString(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unsupported string representation %T", raw)
}

// timeLayouts covers the textual timestamp renderings drivers hand back when
// they do not parse times themselves.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func canonicalTime(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC().Truncate(timestampPrecision), nil
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	}
	return nil, fmt.Errorf("unsupported timestamp representation %T", raw)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(timestampPrecision), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp value %q", s)
}

func canonicalBool(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case []byte:
		// BIT columns arrive as a single byte on some drivers.
		if len(v) == 1 {
			return v[0] != 0, nil
		}
		return parseBoolString(string(v))
	case string:
		return parseBoolString(v)
	}
	return nil, fmt.Errorf("unsupported boolean representation %T", raw)
}

func parseBoolString(s string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1", "Y", "T", "TRUE", "YES":
		return true, nil
	case "0", "N", "F", "FALSE", "NO", "":
		return false, nil
	}
	return false, fmt.Errorf("unparseable boolean value %q", s)
}

// valuesEqual compares two canonical values. Numeric equality is by
// normalized value, so 1 and 1.00 are equal; formatting never matters.
func valuesEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// Key part separator and null marker. The unit separator cannot appear in
// canonical numeric or timestamp renderings, and a NUL-prefixed marker keeps
// NULL distinct from the literal string "NULL".
const (
	keySeparator = "\x1f"
	keyNull      = "\x00"
)

// formatKeyPart renders one canonical value into its deterministic key form.
func formatKeyPart(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return keyNull
	case decimal.Decimal:
		// Decimal rendering keeps the parsed exponent, so "5.0" and "5" would
		// stringify differently; strip insignificant trailing zeros.
		s := t.String()
		if strings.Contains(s, ".") {
			s = strings.TrimRight(s, "0")
			s = strings.TrimRight(s, ".")
		}
		return s
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(v)
}

// encodeKey renders the tuple of key-column values for a record. The engine
// uses the encoded form both as index key and in reported diffs.
func encodeKey(rec RowRecord, keyColumns []string) string {
	if len(keyColumns) == 1 {
		return formatKeyPart(rec[keyColumns[0]])
	}
	parts := make([]string, len(keyColumns))
	for i, col := range keyColumns {
		parts[i] = formatKeyPart(rec[col])
	}
	return strings.Join(parts, keySeparator)
}
