package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

// TabWriter writes records in tab-delimited format. The structured INFO and
// sample data are written as JSON columns.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#CHROM",
			"POS",
			"ID",
			"REF",
			"ALT",
			"QUAL",
			"FILTER",
			"INFO",
			"SAMPLES",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single record.
func (tw *TabWriter) Write(rec *vcf.Record) error {
	info, err := json.Marshal(rec.Info)
	if err != nil {
		return err
	}

	samples := "."
	if rec.Samples != nil {
		b, err := json.Marshal(rec.Samples)
		if err != nil {
			return err
		}
		samples = string(b)
	}

	values := []string{
		rec.Chrom,
		formatScalar(rec.Pos),
		rec.ID,
		rec.Ref,
		strings.Join(rec.Alt, ","),
		formatScalar(rec.Qual),
		rec.Filter,
		string(info),
		samples,
	}

	_, err = tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// formatScalar renders a decoded scalar back to column text. nil is the
// missing sentinel.
func formatScalar(v any) string {
	switch n := v.(type) {
	case nil:
		return "."
	case string:
		return n
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
