package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

// JSONWriter writes one JSON document per record.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
}

// NewJSONWriter creates a new JSON output writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriter(w)}
}

// SetPretty configures indented output. Pretty documents span multiple
// lines, so the output is no longer one record per line.
func (jw *JSONWriter) SetPretty(pretty bool) {
	jw.pretty = pretty
}

// WriteHeader is a no-op; JSON output carries no header line.
func (jw *JSONWriter) WriteHeader() error {
	return nil
}

// Write writes a single record as a JSON document.
func (jw *JSONWriter) Write(rec *vcf.Record) error {
	var (
		b   []byte
		err error
	)
	if jw.pretty {
		b, err = json.MarshalIndent(rec, "", "  ")
	} else {
		b, err = json.Marshal(rec)
	}
	if err != nil {
		return err
	}
	if _, err := jw.w.Write(b); err != nil {
		return err
	}
	return jw.w.WriteByte('\n')
}

// Flush flushes any buffered data to the underlying writer.
func (jw *JSONWriter) Flush() error {
	return jw.w.Flush()
}
