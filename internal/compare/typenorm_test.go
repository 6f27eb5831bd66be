package compare

import "testing"

func TestNormalizeColumnType(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		native  string
		length  int
		prec    int
		scale   int
		want    string
	}{
		{"Oracle varchar2", "oracle", "VARCHAR2", 50, 0, 0, "string(50)"},
		{"Postgres varying", "postgres", "character varying", 50, 0, 0, "string(50)"},
		{"Inline length arg", "oracle", "VARCHAR2(50)", 0, 0, 0, "string(50)"},
		{"Oracle number no args", "oracle", "NUMBER", 0, 0, 0, "decimal"},
		{"Oracle number integer", "oracle", "NUMBER", 0, 10, 0, "integer"},
		{"Oracle number money", "oracle", "NUMBER", 0, 18, 2, "decimal(18,2)"},
		{"Postgres numeric", "postgres", "numeric", 0, 18, 2, "decimal(18,2)"},
		{"Postgres integer", "postgres", "integer", 0, 0, 0, "integer"},
		{"MySQL bigint", "mysql", "bigint", 0, 19, 0, "integer"},
		{"Oracle date is a timestamp", "oracle", "DATE", 0, 0, 0, "timestamp"},
		{"Postgres date", "postgres", "date", 0, 0, 0, "date"},
		{"Oracle timestamp with tz", "oracle", "TIMESTAMP(6) WITH TIME ZONE", 0, 0, 0, "timestamp"},
		{"SQL Server datetime2", "sqlserver", "datetime2", 0, 0, 0, "timestamp"},
		{"Postgres boolean", "postgres", "boolean", 0, 0, 0, "boolean"},
		{"Oracle char is fixed", "oracle", "CHAR", 3, 0, 0, "string(3)"},
		{"Oracle clob", "oracle", "CLOB", 0, 0, 0, "string"},
		{"Oracle raw", "oracle", "RAW", 16, 0, 0, "binary"},
		{"Unknown type", "postgres", "tsvector", 0, 0, 0, "unknown(tsvector)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeColumnType(tt.dialect, tt.native, tt.length, tt.prec, tt.scale)
			if got.String() != tt.want {
				t.Errorf("NormalizeColumnType(%q) = %s, want %s", tt.native, got, tt.want)
			}
		})
	}
}

func TestNormalizeColumnTypeFixedFlag(t *testing.T) {
	if !NormalizeColumnType("oracle", "CHAR", 3, 0, 0).Fixed {
		t.Error("CHAR should be marked fixed-width")
	}
	if NormalizeColumnType("oracle", "VARCHAR2", 50, 0, 0).Fixed {
		t.Error("VARCHAR2 should not be marked fixed-width")
	}
}

func TestTypeEquivalence(t *testing.T) {
	tests := []struct {
		name string
		a, b NormalizedType
		want bool
	}{
		{
			"Cross-vendor strings of same length",
			NormalizeColumnType("oracle", "VARCHAR2", 50, 0, 0),
			NormalizeColumnType("postgres", "character varying", 50, 0, 0),
			true,
		},
		{
			"String lengths differ",
			NormalizeColumnType("oracle", "VARCHAR2", 50, 0, 0),
			NormalizeColumnType("oracle", "VARCHAR2", 60, 0, 0),
			false,
		},
		{
			"Length unknown on one side",
			NormalizeColumnType("postgres", "text", 0, 0, 0),
			NormalizeColumnType("oracle", "CLOB", 0, 0, 0),
			true,
		},
		{
			"Decimal precision differs",
			NormalizeColumnType("oracle", "NUMBER", 0, 18, 2),
			NormalizeColumnType("oracle", "NUMBER", 0, 10, 2),
			false,
		},
		{
			"Integer vs decimal",
			NormalizeColumnType("oracle", "NUMBER", 0, 10, 0),
			NormalizeColumnType("oracle", "NUMBER", 0, 10, 2),
			false,
		},
		{
			"Cross-vendor timestamps",
			NormalizeColumnType("oracle", "DATE", 0, 0, 0),
			NormalizeColumnType("mysql", "datetime", 0, 0, 0),
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equivalent(tt.b); got != tt.want {
				t.Errorf("Equivalent(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
