// Package vcf provides VCF file decoding functionality.
package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Iterator streams decoded records from a VCF input. The header is parsed
// at construction; records are pulled one at a time with Next.
type Iterator struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     *Header
	decoder    *RecordDecoder
	permissive bool
	includeRaw bool
	logger     *zap.Logger
}

// NewIterator creates an iterator for the given file. Plain and gzipped
// files are supported; use "-" to read from stdin.
func NewIterator(path string) (*Iterator, error) {
	if path == "-" {
		return NewIteratorFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	it := &Iterator{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Seek back to beginning
	_, err = file.Seek(0, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	if buf[0] == 0x1f && buf[1] == 0x8b {
		it.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		it.reader = bufio.NewReader(it.gzipReader)
	} else {
		it.reader = bufio.NewReader(file)
	}

	if err := it.init(); err != nil {
		it.Close()
		return nil, err
	}

	return it, nil
}

// NewIteratorFromReader creates an iterator from an io.Reader (e.g. stdin).
func NewIteratorFromReader(r io.Reader) (*Iterator, error) {
	it := &Iterator{
		reader: bufio.NewReader(r),
	}

	if err := it.init(); err != nil {
		return nil, err
	}

	return it, nil
}

// init parses the header and prepares the record decoder.
func (it *Iterator) init() error {
	h, n, err := parseHeader(it.reader, it.lineNumber)
	if err != nil {
		return err
	}
	it.lineNumber = n
	it.header = h
	it.decoder = NewRecordDecoder(h)
	it.logger = zap.NewNop()
	return nil
}

// Header returns the parsed header.
func (it *Iterator) Header() *Header {
	return it.header
}

// Samples returns the sample names from the column header line.
// Returns nil if no sample columns are present.
func (it *Iterator) Samples() []string {
	return it.header.Samples
}

// AddProcessor appends an INFO processor to the decode chain.
func (it *Iterator) AddProcessor(p InfoProcessor) {
	it.decoder.AddProcessor(p)
}

// SetPermissive configures the failure policy. Permissive iteration logs
// undecodable lines and skips them; strict iteration (the default) stops at
// the first one.
func (it *Iterator) SetPermissive(permissive bool) {
	it.permissive = permissive
}

// SetIncludeRaw configures whether each record carries its undecoded line
// text for auditing.
func (it *Iterator) SetIncludeRaw(includeRaw bool) {
	it.includeRaw = includeRaw
}

// SetLogger sets the logger for skipped-line diagnostics.
func (it *Iterator) SetLogger(l *zap.Logger) {
	it.logger = l
}

// LineNumber returns the current line number being processed.
func (it *Iterator) LineNumber() int {
	return it.lineNumber
}

// Next reads the next record from the input.
// Returns nil, nil when there are no more records.
func (it *Iterator) Next() (*Record, error) {
	for {
		line, err := it.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read record line: %w", err)
		}
		eof := err == io.EOF
		if eof && line == "" {
			return nil, nil
		}
		it.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if eof {
				return nil, nil
			}
			continue // Skip empty lines
		}

		rec, err := it.decoder.Decode(line)
		if err != nil {
			if !it.permissive {
				return nil, &DecodeError{Line: it.lineNumber, Raw: line, Err: err}
			}
			it.logger.Warn("failed to decode record",
				zap.Int("line", it.lineNumber),
				zap.String("raw", line),
				zap.Error(err))
			if eof {
				return nil, nil
			}
			continue
		}

		if it.includeRaw {
			rec.Raw = line
		}
		return rec, nil
	}
}

// Close closes the iterator and the underlying file.
func (it *Iterator) Close() error {
	if it.gzipReader != nil {
		it.gzipReader.Close()
	}
	if it.file != nil {
		return it.file.Close()
	}
	return nil
}
