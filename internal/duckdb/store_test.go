package duckdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(pos int64) *vcf.Record {
	return &vcf.Record{
		Chrom:  "20",
		Pos:    pos,
		ID:     "rs6054257",
		Ref:    "G",
		Alt:    []string{"A"},
		Qual:   int64(29),
		Filter: "PASS",
		Info: vcf.InfoMap{
			"A":           {"AF": 0.5},
			vcf.AlleleAll: {"DP": int64(14), "DB": true},
		},
		Samples: map[string]map[string]any{
			"TESTSAMPLE1": {"GT": "0|0", "GQ": int64(48)},
		},
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestWriteAndLookupRecords(t *testing.T) {
	s := openInMemory(t)

	records := []StoredRecord{
		{Source: "example.vcf", Line: 16, Record: testRecord(14370)},
		{Source: "example.vcf", Line: 17, Record: testRecord(17330)},
	}
	require.NoError(t, s.WriteRecords(records))

	found, err := s.LookupPosition("20", 14370)
	require.NoError(t, err)
	require.Len(t, found, 1)

	got := found[0]
	assert.Equal(t, "example.vcf", got.Source)
	assert.Equal(t, 16, got.Line)

	rec := got.Record
	assert.Equal(t, "20", rec.Chrom)
	assert.Equal(t, int64(14370), rec.Pos)
	assert.Equal(t, "rs6054257", rec.ID)
	assert.Equal(t, []string{"A"}, rec.Alt)
	assert.Equal(t, 29.0, rec.Qual)
	assert.Equal(t, "PASS", rec.Filter)

	// JSON round-trips numbers as float64.
	assert.Equal(t, float64(14), rec.Info[vcf.AlleleAll]["DP"])
	assert.Equal(t, true, rec.Info[vcf.AlleleAll]["DB"])
	assert.Equal(t, 0.5, rec.Info["A"]["AF"])
	assert.Equal(t, "0|0", rec.Samples["TESTSAMPLE1"]["GT"])

	found, err = s.LookupPosition("20", 99999)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestWriteRecords_MissingQual(t *testing.T) {
	s := openInMemory(t)

	rec := testRecord(14370)
	rec.Qual = "."
	rec.Samples = nil
	require.NoError(t, s.WriteRecords([]StoredRecord{{Source: "x.vcf", Line: 1, Record: rec}}))

	found, err := s.LookupPosition("20", 14370)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Nil(t, found[0].Record.Qual)
	assert.Nil(t, found[0].Record.Samples)
}

func TestWriteRecords_Empty(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteRecords(nil))

	n, err := s.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCountRecords(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteRecords([]StoredRecord{
		{Source: "a.vcf", Line: 16, Record: testRecord(100)},
		{Source: "a.vcf", Line: 17, Record: testRecord(200)},
		{Source: "b.vcf", Line: 16, Record: testRecord(100)},
	}))

	n, err := s.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestFilters(t *testing.T) {
	s := openInMemory(t)

	pass := testRecord(100)
	q10 := testRecord(200)
	q10.Filter = "q10"
	require.NoError(t, s.WriteRecords([]StoredRecord{
		{Source: "a.vcf", Line: 16, Record: pass},
		{Source: "a.vcf", Line: 17, Record: q10},
		{Source: "a.vcf", Line: 18, Record: testRecord(300)},
	}))

	filters, err := s.Filters()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"PASS": 2, "q10": 1}, filters)
}

func TestClearRecords(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteRecords([]StoredRecord{
		{Source: "a.vcf", Line: 16, Record: testRecord(100)},
	}))
	n, err := s.CountRecords()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.NoError(t, s.ClearRecords())

	n, err = s.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
