package vcf

// AlleleAll is the reserved INFO key for decoded values that apply to the
// whole record rather than to one alternate allele.
const AlleleAll = "ALL"

// InfoMap holds decoded INFO data keyed by allele. A decoded INFO key is
// present either under every alternate allele or exactly once under
// AlleleAll, never a mix of the two.
type InfoMap map[string]map[string]any

// Record is one decoded data line. The JSON field names follow the column
// names of the input format.
type Record struct {
	Chrom   string                    `json:"CHROM"`
	Pos     any                       `json:"POS"`
	ID      string                    `json:"ID"`
	Ref     string                    `json:"REF"`
	Alt     []string                  `json:"ALT"`
	Qual    any                       `json:"QUAL"`
	Filter  string                    `json:"FILTER"`
	Info    InfoMap                   `json:"INFO"`
	Samples map[string]map[string]any `json:"SAMPLES,omitempty"`
	Raw     string                    `json:"RAW,omitempty"`
}
