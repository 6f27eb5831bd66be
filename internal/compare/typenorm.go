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
	"strconv"
	"strings"
)

// TypeKind is the normalized type taxonomy the differ operates on. The two
// sides may use different native type vocabularies for equivalent semantics
// (VARCHAR2(50) vs "character varying(50)"), so raw driver strings are never
// compared directly.
type TypeKind int

const (
	KindUnknown TypeKind = iota
	KindInteger
	KindDecimal
	KindString
	KindDate
	KindTimestamp
	KindBoolean
	KindBinary
)

func (k TypeKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindBoolean:
		return "boolean"
	case KindBinary:
		return "binary"
	}
	return "unknown"
}

// NormalizedType is a tagged variant with width/precision parameters. Native
// is retained only for reporting unknown kinds.
type NormalizedType struct {
	Kind      TypeKind
	Length    int
	Precision int
	Scale     int
	// Fixed marks blank-padded string types (CHAR family), which is what the
	// padding-trim option keys on.
	Fixed  bool
	Native string
}

func (t NormalizedType) String() string {
	switch t.Kind {
	case KindDecimal:
		if t.Precision > 0 {
			return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
		}
		return "decimal"
	case KindString:
		if t.Length > 0 {
			return fmt.Sprintf("string(%d)", t.Length)
		}
		return "string"
	case KindUnknown:
		return fmt.Sprintf("unknown(%s)", t.Native)
	}
	return t.Kind.String()
}

// Equivalent reports whether two normalized types describe the same storage
// semantics. Width parameters are only compared when both sides report them;
// a catalog that omits length cannot contradict one that states it.
func (t NormalizedType) Equivalent(other NormalizedType) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindString:
		if t.Length > 0 && other.Length > 0 && t.Length != other.Length {
			return false
		}
	case KindDecimal:
		if t.Precision > 0 && other.Precision > 0 {
			if t.Precision != other.Precision || t.Scale != other.Scale {
				return false
			}
		}
	case KindUnknown:
		return strings.EqualFold(t.Native, other.Native)
	}
	return true
}

// NormalizeColumnType maps a native catalog type name onto the taxonomy.
// dialect selects vendor-specific interpretations; length/precision/scale come
// from the catalog columns and take priority over any parenthesized suffix in
// the type name itself.
func NormalizeColumnType(dialect, native string, length, precision, scale int) NormalizedType {
	base, argPrec, argScale := splitTypeArgs(native)
	if precision == 0 {
		precision = argPrec
	}
	if scale == 0 && argScale != 0 {
		scale = argScale
	}
	if length == 0 && argPrec != 0 {
		length = argPrec
	}

	nt := NormalizedType{Native: native}

	switch base {
	case "INT", "INTEGER", "SMALLINT", "BIGINT", "TINYINT", "MEDIUMINT",
		"INT2", "INT4", "INT8", "SERIAL", "BIGSERIAL", "SMALLSERIAL":
		nt.Kind = KindInteger

	case "NUMBER", "NUMERIC", "DECIMAL", "DEC":
		// NUMBER(p,0) is an integer column in disguise; NUMBER with no
		// parameters is arbitrary-precision decimal.
		if precision > 0 && scale == 0 {
			nt.Kind = KindInteger
		} else {
			nt.Kind = KindDecimal
			nt.Precision = precision
			nt.Scale = scale
		}

	case "FLOAT", "REAL", "DOUBLE", "DOUBLE PRECISION", "BINARY_FLOAT",
		"BINARY_DOUBLE", "MONEY", "SMALLMONEY":
		nt.Kind = KindDecimal

	case "CHAR", "NCHAR", "CHARACTER", "BPCHAR":
		nt.Kind = KindString
		nt.Length = length
		nt.Fixed = true

	case "VARCHAR", "VARCHAR2", "NVARCHAR", "NVARCHAR2", "CHARACTER VARYING",
		"TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT", "CLOB", "NCLOB",
		"LONG", "NTEXT", "UUID", "ENUM":
		nt.Kind = KindString
		nt.Length = length

	case "DATE":
		// Oracle DATE carries a time component; everywhere else it is a pure
		// calendar date.
		if strings.HasPrefix(dialect, "oracle") {
			nt.Kind = KindTimestamp
		} else {
			nt.Kind = KindDate
		}

	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME", "DATETIME2",
		"SMALLDATETIME", "DATETIMEOFFSET",
		"TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITHOUT TIME ZONE",
		"TIMESTAMP WITH LOCAL TIME ZONE":
		nt.Kind = KindTimestamp

	case "BOOL", "BOOLEAN", "BIT":
		nt.Kind = KindBoolean

	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "RAW", "LONG RAW",
		"BYTEA", "BINARY", "VARBINARY", "IMAGE":
		nt.Kind = KindBinary

	default:
		nt.Kind = KindUnknown
	}

	return nt
}

// splitTypeArgs separates "NUMBER(10,2)" into its base name and numeric
// arguments, and normalizes timestamp names like "TIMESTAMP(6) WITH TIME
// ZONE" back to an argument-free form.
func splitTypeArgs(native string) (base string, precision, scale int) {
	up := strings.ToUpper(strings.TrimSpace(native))

	open := strings.Index(up, "(")
	if open < 0 {
		return up, 0, 0
	}
	close := strings.Index(up[open:], ")")
	if close < 0 {
		return up, 0, 0
	}
	close += open

	args := up[open+1 : close]
	base = strings.TrimSpace(up[:open] + up[close+1:])

	parts := strings.Split(args, ",")
	if p, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
		precision = p
	}
	if len(parts) > 1 {
		if s, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			scale = s
		}
	}

	// TIMESTAMP(6) WITH TIME ZONE: the argument is fractional-second
	// precision, not numeric precision.
	if strings.HasPrefix(base, "TIMESTAMP") || strings.HasPrefix(base, "TIME") || strings.HasPrefix(base, "DATETIME") {
		return base, 0, 0
	}
	return base, precision, scale
}
