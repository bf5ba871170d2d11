package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// InfoProcessor decodes INFO keys it recognizes into the allele-partitioned
// map. Processors run in registration order; processed tells a processor
// whether an earlier one already claimed the key.
type InfoProcessor interface {
	// Accepts reports whether this processor should run for the key.
	// value is the raw string, or boolean true for a bare flag token.
	Accepts(key string, value any, processed bool) bool

	// Process decodes the value into info. It is only invoked when
	// Accepts returned true. alleles is the record's ALT allele list.
	Process(key string, value any, info InfoMap, alleles []string, processed bool) error
}

// stringValue returns the raw value as a string. Bare flag tokens arrive
// as boolean true and cannot be decoded by value-splitting processors.
func stringValue(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("INFO field %s: expected a value, got bare flag", key)
	}
	return s, nil
}

// bucketByAllele partitions annotation entries across the record's alleles
// by their 1-based allele index field. With a single alternate allele every
// entry is assigned to it without consulting the index; annotation tools
// disagree on how the sole allele is numbered.
func bucketByAllele(key, indexField string, entries []map[string]any, info InfoMap, alleles []string) error {
	if len(alleles) == 1 {
		info[alleles[0]][key] = entries
		return nil
	}
	for i, allele := range alleles {
		matched := make([]map[string]any, 0)
		for _, e := range entries {
			idx, ok := e[indexField].(int)
			if !ok {
				return fmt.Errorf("INFO field %s: entry is missing %s", key, indexField)
			}
			if idx-1 == i {
				matched = append(matched, e)
			}
		}
		info[allele][key] = matched
	}
	return nil
}

// CSVAlleleProcessor decodes the comma-separated allele count and frequency
// keys, assigning one number-coerced value to each alternate allele.
type CSVAlleleProcessor struct{}

// NewCSVAlleleProcessor creates the per-allele CSV processor.
func NewCSVAlleleProcessor() *CSVAlleleProcessor {
	return &CSVAlleleProcessor{}
}

// Accepts claims the allele count/frequency keys and their most-likely
// estimate variants.
func (p *CSVAlleleProcessor) Accepts(key string, value any, processed bool) bool {
	switch key {
	case "AC", "AF", "MLEAC", "MLEAF":
		return true
	}
	return false
}

// Process splits the value on commas and stores one coerced value per
// allele. A count mismatch is fatal to the record.
func (p *CSVAlleleProcessor) Process(key string, value any, info InfoMap, alleles []string, processed bool) error {
	s, err := stringValue(key, value)
	if err != nil {
		return err
	}

	parts := strings.Split(s, ",")
	if len(parts) != len(alleles) {
		return &AlleleCountError{Key: key, Values: len(parts), Alleles: len(alleles)}
	}

	for i, allele := range alleles {
		info[allele][key] = CoerceNumber(parts[i])
	}
	return nil
}

// vepKey is the INFO key VEP packs its transcript annotations into.
const vepKey = "CSQ"

// VEPProcessor decodes the VEP CSQ INFO field into per-allele transcript
// entries. The sub-field layout is not fixed: it is read once from the
// key's header Description.
type VEPProcessor struct {
	fields []string
}

// NewVEPProcessor creates a CSQ processor from the header declaration.
// It fails when CSQ is not declared or its description carries no field
// list.
func NewVEPProcessor(h *Header) (*VEPProcessor, error) {
	f := h.InfoField(vepKey)
	if f == nil {
		return nil, fmt.Errorf("%s is not declared in the header", vepKey)
	}
	parts := strings.SplitN(f.Description, "Format: ", 2)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%s description has no format field list: %q", vepKey, f.Description)
	}
	return &VEPProcessor{fields: strings.Split(parts[1], "|")}, nil
}

// Accepts claims the CSQ key.
func (p *VEPProcessor) Accepts(key string, value any, processed bool) bool {
	return key == vepKey
}

// Process splits the value into one entry per transcript, zips each against
// the declared field list (empty pieces are skipped) and buckets the
// entries by their ALLELE_NUM field.
func (p *VEPProcessor) Process(key string, value any, info InfoMap, alleles []string, processed bool) error {
	s, err := stringValue(key, value)
	if err != nil {
		return err
	}

	transcripts := strings.Split(s, ",")
	entries := make([]map[string]any, 0, len(transcripts))
	for _, t := range transcripts {
		pieces := strings.Split(t, "|")
		entry := make(map[string]any)
		for i, name := range p.fields {
			if i >= len(pieces) {
				break
			}
			if pieces[i] == "" {
				continue
			}
			v, err := p.convert(name, pieces[i])
			if err != nil {
				return err
			}
			entry[name] = v
		}
		entries = append(entries, entry)
	}

	return bucketByAllele(key, "ALLELE_NUM", entries, info, alleles)
}

// convert applies the per-field conversions VEP output needs; fields
// without a specific conversion stay strings.
func (p *VEPProcessor) convert(name, value string) (any, error) {
	switch name {
	case "ALLELE_NUM", "DISTANCE", "STRAND":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("CSQ field %s: %w", name, err)
		}
		return n, nil
	case "Consequence", "Existing_variation":
		return strings.Split(value, "&"), nil
	case "PUBMED":
		parts := strings.Split(value, "&")
		ids := make([]int, 0, len(parts))
		for _, part := range parts {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("CSQ field PUBMED: %w", err)
			}
			ids = append(ids, n)
		}
		return ids, nil
	case "AA_MAF", "AFR_MAF", "AMR_MAF", "ASN_MAF", "EA_MAF", "EUR_MAF",
		"EAS_MAF", "SAS_MAF", "GMAF":
		return parseMAF(value), nil
	}
	return value, nil
}

// parseMAF decodes "allele:frequency" pairs joined by '&' into a frequency
// map. Pairs whose frequency does not parse are dropped.
func parseMAF(value string) map[string]float64 {
	maf := make(map[string]float64)
	for _, allele := range strings.Split(value, "&") {
		parts := strings.Split(allele, ":")
		for i := 0; i+1 < len(parts); i += 2 {
			f, err := strconv.ParseFloat(parts[i+1], 64)
			if err != nil {
				continue
			}
			maf[parts[i]] = f
		}
	}
	return maf
}

// snpEffKey is the INFO key snpEff packs its effect annotations into.
const snpEffKey = "EFF"

// SnpEffProcessor decodes the snpEff EFF INFO field into per-allele effect
// entries. The sub-field layout is read once from the key's header
// Description.
type SnpEffProcessor struct {
	fields []string
}

// NewSnpEffProcessor creates an EFF processor from the header declaration.
// It fails when EFF is not declared or its description carries no field
// list.
func NewSnpEffProcessor(h *Header) (*SnpEffProcessor, error) {
	f := h.InfoField(snpEffKey)
	if f == nil {
		return nil, fmt.Errorf("%s is not declared in the header", snpEffKey)
	}
	parts := strings.SplitN(f.Description, "Format: '", 2)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%s description has no format field list: %q", snpEffKey, f.Description)
	}
	fields := parseEffectFormat(parts[1])
	fields = append(fields, "ERRORS")
	return &SnpEffProcessor{fields: fields}, nil
}

// parseEffectFormat flattens snpEff's
// "Effect ( Effect_Impact | Functional_Class | ... [ | ERRORS | WARNINGS ] )"
// notation into a plain field list. The same normalization applies to the
// data values, which carry the parenthesized form per effect.
func parseEffectFormat(line string) []string {
	line = strings.ReplaceAll(line, "(", "|")
	line = strings.ReplaceAll(line, ")", "")
	line = strings.ReplaceAll(line, "[ | ERRORS | WARNINGS ]", "")
	line = strings.ReplaceAll(line, "'", "")

	fields := strings.Split(line, "|")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// Accepts claims the EFF key.
func (p *SnpEffProcessor) Accepts(key string, value any, processed bool) bool {
	return key == snpEffKey
}

// Process splits the value into one entry per effect, normalizes and zips
// each against the declared field list (empty pieces are skipped) and
// buckets the entries by their Genotype_Number field.
func (p *SnpEffProcessor) Process(key string, value any, info InfoMap, alleles []string, processed bool) error {
	s, err := stringValue(key, value)
	if err != nil {
		return err
	}

	effects := strings.Split(s, ",")
	entries := make([]map[string]any, 0, len(effects))
	for _, effect := range effects {
		pieces := parseEffectFormat(effect)
		entry := make(map[string]any)
		for i, name := range p.fields {
			if i >= len(pieces) {
				break
			}
			if pieces[i] == "" {
				continue
			}
			v, err := p.convert(name, pieces[i])
			if err != nil {
				return err
			}
			entry[name] = v
		}
		entries = append(entries, entry)
	}

	return bucketByAllele(key, "Genotype_Number", entries, info, alleles)
}

func (p *SnpEffProcessor) convert(name, value string) (any, error) {
	switch name {
	case "Genotype_Number", "Exon_Rank", "Amino_Acid_length":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("EFF field %s: %w", name, err)
		}
		return n, nil
	}
	return value, nil
}

// NativeProcessor is the fallback for INFO keys no chain processor claimed.
// It decodes values by the key's declared type and arity and stores the
// result under AlleleAll; unlike the chain processors it never partitions
// data across allele keys.
type NativeProcessor struct {
	header *Header
}

// NewNativeProcessor creates the metadata-driven fallback processor.
func NewNativeProcessor(h *Header) *NativeProcessor {
	return &NativeProcessor{header: h}
}

// Process decodes one INFO key/value pair. Bare flags are stored verbatim.
func (p *NativeProcessor) Process(key string, value any, info InfoMap, alleles []string) error {
	if b, ok := value.(bool); ok {
		info[AlleleAll][key] = b
		return nil
	}

	s, err := stringValue(key, value)
	if err != nil {
		return err
	}
	v, err := p.convertFunc(key)(s)
	if err != nil {
		return err
	}
	info[AlleleAll][key] = v
	return nil
}

// convertFunc builds a converter for the key from its header declaration.
// Keys with no declaration pass their raw text through unchanged, and a
// declared type or arity token outside the known set degrades to string
// conversion rather than failing.
func (p *NativeProcessor) convertFunc(key string) ConvertFunc {
	f := p.header.InfoField(key)
	if f == nil {
		return parseStringValue
	}

	var scalar ConvertFunc
	switch f.Type {
	case TypeInteger:
		scalar = DotToNone(parseIntValue)
	case TypeFloat, "Number", "Double":
		scalar = DotToNone(parseFloatValue)
	case TypeFlag:
		scalar = DotToNone(parseFlagValue)
	default:
		scalar = DotToNone(parseStringValue)
	}

	if n, ok := f.FixedCount(); ok {
		return SplitAndConvert(scalar, n, true)
	}
	if f.PerAllele() {
		// One value per allele, kept as an aligned list under AlleleAll.
		return SplitAndConvert(scalar, -1, false)
	}
	if f.Type == TypeInteger {
		return SplitAndConvert(scalar, -1, true)
	}
	return scalar
}
