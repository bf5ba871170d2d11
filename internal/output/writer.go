// Package output provides decoded-record output formatters.
package output

import "github.com/inodb/vibe-vcf/internal/vcf"

// RecordWriter writes decoded records to an output stream. Callers must
// Flush once all records are written.
type RecordWriter interface {
	WriteHeader() error
	Write(rec *vcf.Record) error
	Flush() error
}
