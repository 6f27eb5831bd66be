package compare

import (
	"context"
	"database/sql"

	"github.com/dbparity/dbparity/internal/database"
)

// fakeAdapter serves canned catalog metadata and pre-ordered rows, standing in
// for a live database in engine tests.
type fakeAdapter struct {
	dialect string
	columns []database.ColumnInfo
	rows    []map[string]interface{}

	columnsErr error
	countErr   error
	selectErr  error
	// failOnCall makes the Nth SelectRows call return selectErr; 0 disables.
	failOnCall  int
	selectCalls int
}

func (f *fakeAdapter) FetchColumns(ctx context.Context, tableName string) ([]database.ColumnInfo, error) {
	if f.columnsErr != nil {
		return nil, f.columnsErr
	}
	return f.columns, nil
}

func (f *fakeAdapter) CountRows(ctx context.Context, tableName string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.rows)), nil
}

func (f *fakeAdapter) SelectRows(ctx context.Context, tableName string, columns, orderBy []string, offset, limit int) ([]map[string]interface{}, error) {
	f.selectCalls++
	if f.selectErr != nil && f.selectCalls >= f.failOnCall && f.failOnCall > 0 {
		return nil, f.selectErr
	}
	if offset >= len(f.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.rows) {
		end = len(f.rows)
	}
	return f.rows[offset:end], nil
}

func (f *fakeAdapter) Dialect() string {
	if f.dialect == "" {
		return "oracle"
	}
	return f.dialect
}

func (f *fakeAdapter) Ping(ctx context.Context) error { return nil }
func (f *fakeAdapter) Close() error                   { return nil }

func ci(name, dataType string, nullable bool) database.ColumnInfo {
	return database.ColumnInfo{Name: name, DataType: dataType, Nullable: nullable}
}

func ciNum(name string, precision, scale int64, nullable bool) database.ColumnInfo {
	return database.ColumnInfo{
		Name:      name,
		DataType:  "NUMBER",
		Nullable:  nullable,
		Precision: sql.NullInt64{Int64: precision, Valid: true},
		Scale:     sql.NullInt64{Int64: scale, Valid: scale != 0},
	}
}

func ciStr(name string, length int64, nullable bool) database.ColumnInfo {
	return database.ColumnInfo{
		Name:     name,
		DataType: "VARCHAR2",
		Nullable: nullable,
		Length:   sql.NullInt64{Int64: length, Valid: true},
	}
}

// sliceSource feeds pre-built record batches to DiffRows directly.
type sliceSource struct {
	batches [][]RowRecord
	pos     int
}

func (s *sliceSource) Next(ctx context.Context) ([]RowRecord, error) {
	if s.pos >= len(s.batches) {
		return nil, nil
	}
	b := s.batches[s.pos]
	s.pos++
	return b, nil
}

func oneBatch(recs ...RowRecord) *sliceSource {
	return &sliceSource{batches: [][]RowRecord{recs}}
}
