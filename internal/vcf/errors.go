package vcf

import "fmt"

// HeaderError represents a malformed header with line context.
// No partial header is usable, so these are fatal to the decode session.
type HeaderError struct {
	Line    int
	Message string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("vcf header error at line %d: %s", e.Line, e.Message)
}

// AlleleCountError reports a per-allele INFO value whose element count does
// not match the number of alternate alleles on the record.
type AlleleCountError struct {
	Key     string
	Values  int
	Alleles int
}

func (e *AlleleCountError) Error() string {
	return fmt.Sprintf("INFO field %s has %d values for %d alleles", e.Key, e.Values, e.Alleles)
}

// DecodeError wraps any failure while decoding one data line.
type DecodeError struct {
	Line int
	Raw  string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("vcf decode error at line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
