package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vepHeader = "##INFO=<ID=CSQ,Number=.,Type=String,Description=\"Consequence annotations from Ensembl VEP. Format: Allele|Consequence|IMPACT|SYMBOL|Gene|ALLELE_NUM|DISTANCE|STRAND|GMAF|PUBMED|Existing_variation\">\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

const snpEffHeader = "##INFO=<ID=EFF,Number=.,Type=String,Description=\"Predicted effects for this variant.Format: 'Effect ( Effect_Impact | Functional_Class | Codon_Change | Amino_Acid_Change| Amino_Acid_length | Gene_Name | Transcript_BioType | Gene_Coding | Transcript_ID | Exon_Rank  | Genotype_Number [ | ERRORS | WARNINGS ] )'\">\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

func newInfoMap(alleles ...string) InfoMap {
	info := make(InfoMap, len(alleles)+1)
	for _, a := range alleles {
		info[a] = make(map[string]any)
	}
	info[AlleleAll] = make(map[string]any)
	return info
}

func TestCSVAlleleProcessor_Accepts(t *testing.T) {
	p := NewCSVAlleleProcessor()

	assert.True(t, p.Accepts("AC", "1", false))
	assert.True(t, p.Accepts("AF", "0.5", false))
	assert.True(t, p.Accepts("MLEAC", "1", false))
	assert.True(t, p.Accepts("MLEAF", "0.5", false))
	assert.True(t, p.Accepts("AC", "1", true))
	assert.False(t, p.Accepts("DP", "14", false))
	assert.False(t, p.Accepts("CSQ", "x", false))
}

func TestCSVAlleleProcessor_Process(t *testing.T) {
	p := NewCSVAlleleProcessor()
	alleles := []string{"A", "T"}
	info := newInfoMap(alleles...)

	require.NoError(t, p.Process("AC", "1,2", info, alleles, false))
	require.NoError(t, p.Process("AF", "0.5,0.25", info, alleles, false))

	assert.Equal(t, int64(1), info["A"]["AC"])
	assert.Equal(t, int64(2), info["T"]["AC"])
	assert.Equal(t, 0.5, info["A"]["AF"])
	assert.Equal(t, 0.25, info["T"]["AF"])
	assert.Empty(t, info[AlleleAll])
}

func TestCSVAlleleProcessor_CountMismatch(t *testing.T) {
	p := NewCSVAlleleProcessor()
	alleles := []string{"A"}
	info := newInfoMap(alleles...)

	err := p.Process("AC", "1,2", info, alleles, false)

	var cerr *AlleleCountError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "AC", cerr.Key)
	assert.Equal(t, 2, cerr.Values)
	assert.Equal(t, 1, cerr.Alleles)
}

func TestCSVAlleleProcessor_BareFlag(t *testing.T) {
	p := NewCSVAlleleProcessor()
	alleles := []string{"A"}
	info := newInfoMap(alleles...)

	err := p.Process("AC", true, info, alleles, false)
	assert.ErrorContains(t, err, "bare flag")
}

func TestNewVEPProcessor(t *testing.T) {
	p, err := NewVEPProcessor(headerFromString(t, vepHeader))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Allele", "Consequence", "IMPACT", "SYMBOL", "Gene",
		"ALLELE_NUM", "DISTANCE", "STRAND", "GMAF", "PUBMED",
		"Existing_variation",
	}, p.fields)
	assert.True(t, p.Accepts("CSQ", "x", false))
	assert.False(t, p.Accepts("EFF", "x", false))
}

func TestNewVEPProcessor_NotDeclared(t *testing.T) {
	_, err := NewVEPProcessor(headerFromString(t, testHeader))
	assert.ErrorContains(t, err, "not declared")
}

func TestNewVEPProcessor_NoFormatList(t *testing.T) {
	src := "##INFO=<ID=CSQ,Number=.,Type=String,Description=\"Consequence annotations\">\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"
	_, err := NewVEPProcessor(headerFromString(t, src))
	assert.ErrorContains(t, err, "no format field list")
}

func TestVEPProcessor_SingleAllele(t *testing.T) {
	p, err := NewVEPProcessor(headerFromString(t, vepHeader))
	require.NoError(t, err)

	alleles := []string{"A"}
	info := newInfoMap(alleles...)
	value := "A|missense_variant&splice_region_variant|MODERATE|KRAS|ENSG00000133703|1|0|-1|A:0.1234|123&456|rs1&rs2"

	require.NoError(t, p.Process("CSQ", value, info, alleles, false))

	entries, ok := info["A"]["CSQ"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, entries, 1)

	assert.Equal(t, map[string]any{
		"Allele":             "A",
		"Consequence":        []string{"missense_variant", "splice_region_variant"},
		"IMPACT":             "MODERATE",
		"SYMBOL":             "KRAS",
		"Gene":               "ENSG00000133703",
		"ALLELE_NUM":         1,
		"DISTANCE":           0,
		"STRAND":             -1,
		"GMAF":               map[string]float64{"A": 0.1234},
		"PUBMED":             []int{123, 456},
		"Existing_variation": []string{"rs1", "rs2"},
	}, entries[0])
	assert.Empty(t, info[AlleleAll])
}

func TestVEPProcessor_MultiAllele(t *testing.T) {
	p, err := NewVEPProcessor(headerFromString(t, vepHeader))
	require.NoError(t, err)

	alleles := []string{"A", "T"}
	info := newInfoMap(alleles...)
	value := "A|intron_variant|MODIFIER|GENE1||1|||||," +
		"T|stop_gained|HIGH|GENE1||2|||||"

	require.NoError(t, p.Process("CSQ", value, info, alleles, false))

	first, ok := info["A"]["CSQ"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, first, 1)
	assert.Equal(t, 1, first[0]["ALLELE_NUM"])
	assert.Equal(t, []string{"intron_variant"}, first[0]["Consequence"])

	second, ok := info["T"]["CSQ"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, second, 1)
	assert.Equal(t, 2, second[0]["ALLELE_NUM"])

	// Empty sub-fields are dropped, not stored as empty strings.
	_, present := first[0]["Gene"]
	assert.False(t, present)
}

func TestVEPProcessor_UnmatchedAlleleGetsEmptyList(t *testing.T) {
	p, err := NewVEPProcessor(headerFromString(t, vepHeader))
	require.NoError(t, err)

	alleles := []string{"A", "T"}
	info := newInfoMap(alleles...)

	require.NoError(t, p.Process("CSQ", "A|intron_variant|MODIFIER|||1|||||", info, alleles, false))

	entries, ok := info["T"]["CSQ"].([]map[string]any)
	require.True(t, ok)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestVEPProcessor_MissingAlleleNumber(t *testing.T) {
	p, err := NewVEPProcessor(headerFromString(t, vepHeader))
	require.NoError(t, err)

	alleles := []string{"A", "T"}
	info := newInfoMap(alleles...)

	err = p.Process("CSQ", "A|intron_variant|||||||||", info, alleles, false)
	assert.ErrorContains(t, err, "ALLELE_NUM")
}

func TestVEPProcessor_BadPubmedID(t *testing.T) {
	p, err := NewVEPProcessor(headerFromString(t, vepHeader))
	require.NoError(t, err)

	alleles := []string{"A"}
	info := newInfoMap(alleles...)

	err = p.Process("CSQ", "A|||||1||||12x4|", info, alleles, false)
	assert.ErrorContains(t, err, "PUBMED")
}

func TestParseMAF(t *testing.T) {
	assert.Equal(t, map[string]float64{"A": 0.1234}, parseMAF("A:0.1234"))
	assert.Equal(t, map[string]float64{"A": 0.1, "T": 0.2}, parseMAF("A:0.1&T:0.2"))
	assert.Equal(t, map[string]float64{"-": 0.0091}, parseMAF("-:0.0091"))
	assert.Empty(t, parseMAF("A:notafloat"))
}

func TestNewSnpEffProcessor(t *testing.T) {
	p, err := NewSnpEffProcessor(headerFromString(t, snpEffHeader))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Effect", "Effect_Impact", "Functional_Class", "Codon_Change",
		"Amino_Acid_Change", "Amino_Acid_length", "Gene_Name",
		"Transcript_BioType", "Gene_Coding", "Transcript_ID",
		"Exon_Rank", "Genotype_Number", "ERRORS",
	}, p.fields)
	assert.True(t, p.Accepts("EFF", "x", false))
	assert.False(t, p.Accepts("CSQ", "x", false))
}

func TestNewSnpEffProcessor_NotDeclared(t *testing.T) {
	_, err := NewSnpEffProcessor(headerFromString(t, testHeader))
	assert.ErrorContains(t, err, "not declared")
}

func TestSnpEffProcessor_Process(t *testing.T) {
	p, err := NewSnpEffProcessor(headerFromString(t, snpEffHeader))
	require.NoError(t, err)

	alleles := []string{"T"}
	info := newInfoMap(alleles...)
	value := "NON_SYNONYMOUS_CODING(MODERATE|MISSENSE|Ggt/Tgt|G12C|189|KRAS|protein_coding|CODING|ENST00000311936|2|1)"

	require.NoError(t, p.Process("EFF", value, info, alleles, false))

	entries, ok := info["T"]["EFF"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, entries, 1)

	assert.Equal(t, map[string]any{
		"Effect":             "NON_SYNONYMOUS_CODING",
		"Effect_Impact":      "MODERATE",
		"Functional_Class":   "MISSENSE",
		"Codon_Change":       "Ggt/Tgt",
		"Amino_Acid_Change":  "G12C",
		"Amino_Acid_length":  189,
		"Gene_Name":          "KRAS",
		"Transcript_BioType": "protein_coding",
		"Gene_Coding":        "CODING",
		"Transcript_ID":      "ENST00000311936",
		"Exon_Rank":          2,
		"Genotype_Number":    1,
	}, entries[0])
}

func TestSnpEffProcessor_MultiAllele(t *testing.T) {
	p, err := NewSnpEffProcessor(headerFromString(t, snpEffHeader))
	require.NoError(t, err)

	alleles := []string{"A", "T"}
	info := newInfoMap(alleles...)
	value := "DOWNSTREAM(MODIFIER||||759|GENE1|protein_coding|CODING|ENST1||1)," +
		"INTRON(MODIFIER||||759|GENE1|protein_coding|CODING|ENST1|3|2)"

	require.NoError(t, p.Process("EFF", value, info, alleles, false))

	first, ok := info["A"]["EFF"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, first, 1)
	assert.Equal(t, "DOWNSTREAM", first[0]["Effect"])

	second, ok := info["T"]["EFF"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, second, 1)
	assert.Equal(t, "INTRON", second[0]["Effect"])
	assert.Equal(t, 3, second[0]["Exon_Rank"])
}

func TestSnpEffProcessor_ErrorsField(t *testing.T) {
	p, err := NewSnpEffProcessor(headerFromString(t, snpEffHeader))
	require.NoError(t, err)

	alleles := []string{"T"}
	info := newInfoMap(alleles...)
	value := "INTRON(MODIFIER||||759|GENE1|protein_coding|CODING|ENST1|3|1|WARNING_TRANSCRIPT_NO_START_CODON)"

	require.NoError(t, p.Process("EFF", value, info, alleles, false))

	entries := info["T"]["EFF"].([]map[string]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARNING_TRANSCRIPT_NO_START_CODON", entries[0]["ERRORS"])
}

func TestParseEffectFormat(t *testing.T) {
	fields := parseEffectFormat("Effect ( Effect_Impact | Gene_Name | Genotype_Number [ | ERRORS | WARNINGS ] )'")
	assert.Equal(t, []string{"Effect", "Effect_Impact", "Gene_Name", "Genotype_Number"}, fields)
}

func TestNativeProcessor(t *testing.T) {
	src := "##INFO=<ID=NS,Number=1,Type=Integer,Description=\"n\">\n" +
		"##INFO=<ID=AF,Number=A,Type=Float,Description=\"af\">\n" +
		"##INFO=<ID=DP2,Number=2,Type=Integer,Description=\"d\">\n" +
		"##INFO=<ID=CIGAR,Number=.,Type=String,Description=\"c\">\n" +
		"##INFO=<ID=TC,Number=.,Type=Integer,Description=\"t\">\n" +
		"##INFO=<ID=FQ,Number=.,Type=Float,Description=\"f\">\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"
	p := NewNativeProcessor(headerFromString(t, src))

	tests := []struct {
		name  string
		key   string
		value string
		want  any
	}{
		{"declared integer", "NS", "3", int64(3)},
		{"declared integer missing", "NS", ".", nil},
		{"fixed count keeps a list", "DP2", "1,2", []any{int64(1), int64(2)}},
		{"per allele single stays a list", "AF", "0.5", []any{0.5}},
		{"per allele list", "AF", "0.5,0.25", []any{0.5, 0.25}},
		{"per allele missing", "AF", ".", []any{nil}},
		{"unbounded integer single unwraps", "TC", "5", int64(5)},
		{"unbounded integer list", "TC", "5,7", []any{int64(5), int64(7)}},
		{"unbounded float is scalar", "FQ", "33.5", 33.5},
		{"unbounded float missing", "FQ", ".", nil},
		{"unbounded string is scalar", "CIGAR", "1M", "1M"},
		{"unbounded string keeps commas", "CIGAR", "a,b", "a,b"},
		{"undeclared key passes through", "XYZ", "a,b", "a,b"},
		{"undeclared dot stays a dot", "XYZ", ".", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alleles := []string{"A"}
			info := newInfoMap(alleles...)
			require.NoError(t, p.Process(tt.key, tt.value, info, alleles))
			assert.Equal(t, tt.want, info[AlleleAll][tt.key])
			assert.Empty(t, info["A"])
		})
	}
}

func TestNativeProcessor_Flag(t *testing.T) {
	p := NewNativeProcessor(headerFromString(t, testHeader))
	alleles := []string{"A"}
	info := newInfoMap(alleles...)

	require.NoError(t, p.Process("DB", true, info, alleles))
	assert.Equal(t, true, info[AlleleAll]["DB"])
}

func TestNativeProcessor_BadValue(t *testing.T) {
	p := NewNativeProcessor(headerFromString(t, testHeader))
	alleles := []string{"A"}
	info := newInfoMap(alleles...)

	err := p.Process("NS", "notanumber", info, alleles)
	assert.ErrorContains(t, err, "parse integer")
}
