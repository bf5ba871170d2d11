package vcf

import (
	"fmt"
	"strings"
)

// RecordDecoder turns one tab-separated data line into a Record using the
// parsed header. Decoding records is independent given the immutable header
// and processor chain, so one decoder per input can run concurrently with
// others.
type RecordDecoder struct {
	header     *Header
	processors []InfoProcessor
	fallback   *NativeProcessor
}

// NewRecordDecoder creates a decoder for records described by h. The
// per-allele CSV processor is registered by default.
func NewRecordDecoder(h *Header) *RecordDecoder {
	d := &RecordDecoder{
		header:   h,
		fallback: NewNativeProcessor(h),
	}
	d.AddProcessor(NewCSVAlleleProcessor())
	return d
}

// AddProcessor appends p to the INFO processor chain. Processors run in
// registration order.
func (d *RecordDecoder) AddProcessor(p InfoProcessor) {
	d.processors = append(d.processors, p)
}

// Decode decodes a single data line into a Record.
func (d *RecordDecoder) Decode(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	values := make(map[string]string, len(d.header.Columns))
	for i, col := range d.header.Columns {
		if i >= len(fields) {
			break
		}
		values[col] = fields[i]
	}

	alt, err := requiredColumn(values, "ALT")
	if err != nil {
		return nil, err
	}
	alleles := strings.Split(alt, ",")

	rawInfo, err := requiredColumn(values, "INFO")
	if err != nil {
		return nil, err
	}
	info, err := d.decodeInfo(rawInfo, alleles)
	if err != nil {
		return nil, err
	}

	samples, err := d.decodeSamples(values)
	if err != nil {
		return nil, err
	}

	pos, err := requiredColumn(values, "POS")
	if err != nil {
		return nil, err
	}
	qual, err := requiredColumn(values, "QUAL")
	if err != nil {
		return nil, err
	}

	return &Record{
		Chrom:   values["CHROM"],
		Pos:     CoerceNumber(pos),
		ID:      values["ID"],
		Ref:     values["REF"],
		Alt:     alleles,
		Qual:    CoerceNumber(qual),
		Filter:  values["FILTER"],
		Info:    info,
		Samples: samples,
	}, nil
}

// decodeInfo splits the raw INFO column into key/value tokens and runs each
// through the processor chain, falling back to the native processor for
// unclaimed keys. Tokens without '=' are boolean flags.
func (d *RecordDecoder) decodeInfo(raw string, alleles []string) (InfoMap, error) {
	info := make(InfoMap, len(alleles)+1)
	for _, allele := range alleles {
		info[allele] = make(map[string]any)
	}
	info[AlleleAll] = make(map[string]any)

	for _, token := range strings.Split(raw, ";") {
		var key string
		var value any
		if parts := strings.SplitN(token, "=", 2); len(parts) == 2 {
			key, value = parts[0], parts[1]
		} else {
			key, value = token, true
		}

		processed := false
		for _, p := range d.processors {
			if p.Accepts(key, value, processed) {
				if err := p.Process(key, value, info, alleles, processed); err != nil {
					return nil, err
				}
				processed = true
			}
		}
		if !processed {
			if err := d.fallback.Process(key, value, info, alleles); err != nil {
				return nil, err
			}
		}
	}

	return info, nil
}

// decodeSamples zips the FORMAT key list against each sample column,
// number-coercing every piece. Pieces holding comma lists (paired
// haplotype qualities and the like) decode to slices. Records without a
// FORMAT column carry no sample data.
func (d *RecordDecoder) decodeSamples(values map[string]string) (map[string]map[string]any, error) {
	format, ok := values["FORMAT"]
	if !ok {
		return nil, nil
	}
	keys := strings.Split(format, ":")
	convert := SplitAndConvert(coerceFunc, -1, true)

	samples := make(map[string]map[string]any, len(d.header.Samples))
	for _, name := range d.header.Samples {
		text, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("line is missing the %s sample column", name)
		}
		pieces := strings.Split(text, ":")
		decoded := make(map[string]any, len(keys))
		for i, key := range keys {
			if i >= len(pieces) {
				break
			}
			v, err := convert(pieces[i])
			if err != nil {
				return nil, err
			}
			decoded[key] = v
		}
		samples[name] = decoded
	}
	return samples, nil
}

func requiredColumn(values map[string]string, name string) (string, error) {
	v, ok := values[name]
	if !ok {
		return "", fmt.Errorf("line is missing the %s column", name)
	}
	return v, nil
}
