package vcf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// The fixed column names of the VCF format. Any other column on the
// header line names a sample.
var specColumns = map[string]bool{
	"CHROM":  true,
	"POS":    true,
	"ID":     true,
	"REF":    true,
	"ALT":    true,
	"QUAL":   true,
	"FILTER": true,
	"INFO":   true,
	"FORMAT": true,
}

// Header is the decoded header block of one input: the raw meta
// declarations, the structured INFO/FILTER/FORMAT entries, and the column
// and sample names. Immutable once parsed; shared read-only by the decode
// pipeline.
type Header struct {
	Meta    map[string]MetaValue
	Info    []FieldMeta
	Filter  []FieldMeta
	Format  []FieldMeta
	Columns []string
	Samples []string
}

// InfoField returns the declaration for an INFO key, or nil when the key
// is not declared.
func (h *Header) InfoField(id string) *FieldMeta {
	for i := range h.Info {
		if h.Info[i].ID == id {
			return &h.Info[i]
		}
	}
	return nil
}

// parseHeader consumes lines from r through the column header line and
// builds the Header. lineNumber is the count of lines already consumed
// from r; the updated count is returned alongside the header.
func parseHeader(r *bufio.Reader, lineNumber int) (*Header, int, error) {
	h := &Header{Meta: make(map[string]MetaValue)}

	for {
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, lineNumber, fmt.Errorf("read header: %w", err)
		}
		eof := err == io.EOF
		if eof && line == "" {
			return nil, lineNumber, &HeaderError{Line: lineNumber, Message: "no column header line found"}
		}
		lineNumber++
		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "##"):
			parts := strings.SplitN(line[2:], "=", 2)
			if len(parts) < 2 {
				return nil, lineNumber, &HeaderError{Line: lineNumber, Message: "meta line missing '='"}
			}
			mv := h.Meta[parts[0]]
			mv.values = append(mv.values, parts[1])
			h.Meta[parts[0]] = mv

		case strings.HasPrefix(line, "#"):
			h.Columns = strings.Split(strings.TrimPrefix(line, "#"), "\t")
			for _, col := range h.Columns {
				if !specColumns[col] {
					h.Samples = append(h.Samples, col)
				}
			}
			h.Info = parseFieldMetas(h.Meta["INFO"])
			h.Filter = parseFieldMetas(h.Meta["FILTER"])
			h.Format = parseFieldMetas(h.Meta["FORMAT"])
			return h, lineNumber, nil

		default:
			return nil, lineNumber, &HeaderError{Line: lineNumber, Message: "expected column header line before data"}
		}

		if eof {
			return nil, lineNumber, &HeaderError{Line: lineNumber, Message: "no column header line found"}
		}
	}
}

// parseFieldMetas parses every raw declaration of a structured meta
// category (INFO, FILTER, FORMAT) into FieldMeta entries.
func parseFieldMetas(mv MetaValue) []FieldMeta {
	if mv.Len() == 0 {
		return nil
	}
	metas := make([]FieldMeta, 0, mv.Len())
	for _, raw := range mv.All() {
		fields := parseMetaFields(raw)
		metas = append(metas, FieldMeta{
			ID:          fields["ID"],
			Number:      fields["Number"],
			Type:        FieldType(fields["Type"]),
			Description: fields["Description"],
			Fields:      fields,
		})
	}
	return metas
}

// parseMetaFields extracts the key=value pairs from a bracketed meta
// declaration such as <ID=DP,Number=1,Type=Integer,Description="Total Depth">.
// Values may be double-quoted; quoted values can contain commas.
func parseMetaFields(raw string) map[string]string {
	s := strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	fields := make(map[string]string)

	for len(s) > 0 {
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			break
		}
		key := s[:eq]
		s = s[eq+1:]

		var value string
		if strings.HasPrefix(s, `"`) {
			s = s[1:]
			if end := strings.IndexByte(s, '"'); end >= 0 {
				value, s = s[:end], s[end+1:]
			} else {
				value, s = s, ""
			}
		} else {
			if end := strings.IndexByte(s, ','); end >= 0 {
				value, s = s[:end], s[end+1:]
			} else {
				value, s = s, ""
			}
		}

		fields[key] = value
		s = strings.TrimPrefix(s, ",")
	}

	return fields
}
