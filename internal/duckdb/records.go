package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

// StoredRecord pairs a decoded record with the file and line it came from.
type StoredRecord struct {
	Source string
	Line   int
	Record *vcf.Record
}

// WriteRecords batch-inserts decoded records into DuckDB using the Appender
// API. INFO and sample data are stored as JSON.
func (s *Store) WriteRecords(records []StoredRecord) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "vcf_records")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		rec := r.Record

		info, err := json.Marshal(rec.Info)
		if err != nil {
			return fmt.Errorf("encode info: %w", err)
		}
		var samples any
		if rec.Samples != nil {
			b, err := json.Marshal(rec.Samples)
			if err != nil {
				return fmt.Errorf("encode samples: %w", err)
			}
			samples = string(b)
		}

		if err := appender.AppendRow(
			r.Source, int32(r.Line), rec.Chrom, posValue(rec.Pos),
			rec.ID, rec.Ref, strings.Join(rec.Alt, ","), qualValue(rec.Qual),
			rec.Filter, string(info), samples,
		); err != nil {
			return fmt.Errorf("append record: %w", err)
		}
	}

	return appender.Flush()
}

// posValue maps a decoded position onto the BIGINT column. Non-numeric
// positions (the missing sentinel) become NULL.
func posValue(v any) any {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return nil
}

// qualValue maps a decoded quality onto the DOUBLE column. Non-numeric
// qualities become NULL.
func qualValue(v any) any {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return nil
}

// ClearRecords removes all stored records.
func (s *Store) ClearRecords() error {
	_, err := s.db.Exec("DELETE FROM vcf_records")
	return err
}

// CountRecords returns the number of stored records.
func (s *Store) CountRecords() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM vcf_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// LookupPosition returns every stored record at a chromosome position.
func (s *Store) LookupPosition(chrom string, pos int64) ([]StoredRecord, error) {
	rows, err := s.db.Query(`SELECT source, line, chrom, pos, id, ref, alt, qual, filter, info, samples
		FROM vcf_records
		WHERE chrom=? AND pos=?`, chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("query position: %w", err)
	}
	defer rows.Close()

	return scanStoredRecords(rows)
}

// Filters returns the distinct FILTER values of the stored records and how
// many rows carry each.
func (s *Store) Filters() (map[string]int64, error) {
	rows, err := s.db.Query("SELECT filter, COUNT(*) FROM vcf_records GROUP BY filter")
	if err != nil {
		return nil, fmt.Errorf("query filters: %w", err)
	}
	defer rows.Close()

	filters := make(map[string]int64)
	for rows.Next() {
		var filter string
		var n int64
		if err := rows.Scan(&filter, &n); err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		filters[filter] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filters: %w", err)
	}
	return filters, nil
}

// scanStoredRecords rebuilds records from result rows. Numbers inside the
// JSON INFO and sample data come back as float64.
func scanStoredRecords(rows *sql.Rows) ([]StoredRecord, error) {
	var records []StoredRecord
	for rows.Next() {
		var (
			source, chrom, id, ref, alt, filter, info string
			line                                      int32
			pos                                       sql.NullInt64
			qual                                      sql.NullFloat64
			samples                                   sql.NullString
		)
		if err := rows.Scan(&source, &line, &chrom, &pos, &id, &ref, &alt, &qual, &filter, &info, &samples); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		rec := &vcf.Record{
			Chrom:  chrom,
			ID:     id,
			Ref:    ref,
			Alt:    strings.Split(alt, ","),
			Filter: filter,
		}
		if pos.Valid {
			rec.Pos = pos.Int64
		}
		if qual.Valid {
			rec.Qual = qual.Float64
		}
		if err := json.Unmarshal([]byte(info), &rec.Info); err != nil {
			return nil, fmt.Errorf("decode info: %w", err)
		}
		if samples.Valid {
			if err := json.Unmarshal([]byte(samples.String), &rec.Samples); err != nil {
				return nil, fmt.Errorf("decode samples: %w", err)
			}
		}

		records = append(records, StoredRecord{Source: source, Line: int(line), Record: rec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
