package vcf

import "strconv"

// FieldType is the declared type token of a header field. The set is open:
// headers in the wild carry tokens beyond the documented five, and unknown
// tokens decode as strings.
type FieldType string

const (
	TypeInteger   FieldType = "Integer"
	TypeFloat     FieldType = "Float"
	TypeFlag      FieldType = "Flag"
	TypeString    FieldType = "String"
	TypeCharacter FieldType = "Character"
)

// FieldMeta is one declared INFO, FILTER or FORMAT entry from the header.
type FieldMeta struct {
	ID          string
	Number      string
	Type        FieldType
	Description string
	Fields      map[string]string // every key=value pair as declared
}

// FixedCount returns the declared value count when Number is a literal
// integer.
func (f *FieldMeta) FixedCount() (int, bool) {
	n, err := strconv.Atoi(f.Number)
	if err != nil {
		return 0, false
	}
	return n, true
}

// PerAllele reports whether the field declares one value per alternate
// allele (Number=A).
func (f *FieldMeta) PerAllele() bool {
	return f.Number == "A"
}

// MetaValue holds the raw declarations for one meta key in file order.
// Most keys are declared exactly once; Single gives collapsed access to
// those, while repeated keys (contig, INFO, ...) keep their full sequence.
type MetaValue struct {
	values []string
}

// Len returns the number of declarations.
func (m MetaValue) Len() int {
	return len(m.values)
}

// Single returns the bare value when the key was declared exactly once.
func (m MetaValue) Single() (string, bool) {
	if len(m.values) == 1 {
		return m.values[0], true
	}
	return "", false
}

// All returns every declaration in file order.
func (m MetaValue) All() []string {
	return m.values
}
