// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Lineage is the structural architecture class of a pacifastin-like domain,
// determined by the length of the C1-C2 loop.
type Lineage string

const (
	// LineageCompact is the conventional architecture (9-12 residue loop).
	LineageCompact Lineage = "Compact-loop"

	// LineageExtended is the ancestral architecture (13-20 residue loop).
	LineageExtended Lineage = "Extended-loop"

	// LineageUnclassified marks domains whose loop length falls outside
	// both architecture windows.
	LineageUnclassified Lineage = "Unclassified/Other"
)

// DetectionMethod records how a homolog was found: by profile HMM search,
// by structural similarity search, or by both.
type DetectionMethod string

const (
	MethodSequenceOnly  DetectionMethod = "Sequence-only"
	MethodStructureOnly DetectionMethod = "Structure-only"
	MethodCommon        DetectionMethod = "Common"
)

// Supergroup is the coarse taxonomic stratum used for the evolutionary
// metrics: Arthropoda versus everything else.
type Supergroup string

const (
	SupergroupArthropoda    Supergroup = "Arthropoda"
	SupergroupNonArthropoda Supergroup = "Non-Arthropoda"
)

// SupergroupOf maps a phylum name to its supergroup.
func SupergroupOf(phylum string) Supergroup {
	if phylum == "Arthropoda" {
		return SupergroupArthropoda
	}
	return SupergroupNonArthropoda
}

// CDSRecord holds one coding sequence extracted from a GenBank file,
// together with the taxonomic metadata of its source record.
type CDSRecord struct {
	// File is the GenBank file the CDS came from.
	File string `json:"file" yaml:"file"`

	// ProteinID is the protein_id qualifier (e.g. "CAB46505.1").
	ProteinID string `json:"protein_id" yaml:"protein_id"`

	// LocusTag is the locus_tag qualifier, or "N/A" when absent.
	LocusTag string `json:"locus_tag" yaml:"locus_tag"`

	// Organism is the source organism name.
	Organism string `json:"organism" yaml:"organism"`

	// Taxonomy is the semicolon-joined taxonomic lineage.
	Taxonomy string `json:"taxonomy" yaml:"taxonomy"`

	// Translation is the protein sequence from the translation qualifier.
	Translation string `json:"translation" yaml:"translation"`
}

// SequenceHit is one hmmsearch table row that passed filtering.
type SequenceHit struct {
	Target   string  `json:"target" yaml:"target"`
	Query    string  `json:"query" yaml:"query"`
	EValue   float64 `json:"evalue" yaml:"evalue"`
	BitScore float64 `json:"bit_score" yaml:"bit_score"`
}

// StructureHit is one foldseek alignment row that passed filtering.
type StructureHit struct {
	Query             string  `json:"query" yaml:"query"`
	Target            string  `json:"target" yaml:"target"`
	FractionIdentical float64 `json:"fident" yaml:"fident"`
	AlignmentLength   int     `json:"alnlen" yaml:"alnlen"`
	EValue            float64 `json:"evalue" yaml:"evalue"`
	BitScore          float64 `json:"bits" yaml:"bits"`
}

// Detection labels one homolog with the method(s) that found it.
type Detection struct {
	SequenceID string          `json:"sequence_id" yaml:"sequence_id"`
	Method     DetectionMethod `json:"method" yaml:"method"`
	Phylum     string          `json:"phylum,omitempty" yaml:"phylum,omitempty"`
}

// Classification is the loop-topology result for one domain sequence.
type Classification struct {
	SequenceID   string  `json:"sequence_id" yaml:"sequence_id"`
	LoopLength   int     `json:"c1_c2_length" yaml:"c1_c2_length"`
	LoopSequence string  `json:"loop_sequence" yaml:"loop_sequence"`
	Lineage      Lineage `json:"lineage" yaml:"lineage"`
}

// Homolog is the full per-sequence record stored in the atlas.
type Homolog struct {
	ID           string          `json:"id" yaml:"id"`
	Organism     string          `json:"organism" yaml:"organism"`
	Phylum       string          `json:"phylum" yaml:"phylum"`
	Species      string          `json:"species" yaml:"species"`
	Lineage      Lineage         `json:"lineage" yaml:"lineage"`
	Method       DetectionMethod `json:"method" yaml:"method"`
	LoopLength   int             `json:"loop_length" yaml:"loop_length"`
	LoopSequence string          `json:"loop_sequence" yaml:"loop_sequence"`
	P1Residue    string          `json:"p1_residue,omitempty" yaml:"p1_residue,omitempty"`
	Sequence     string          `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// LinkerRecord is one inter-domain linker observation for the cleavage
// regression.
type LinkerRecord struct {
	SequenceID string  `json:"sequence_id" yaml:"sequence_id"`
	LinkerSeq  string  `json:"linker_seq" yaml:"linker_seq"`
	Lineage    Lineage `json:"lineage" yaml:"lineage"`
	Phylum     string  `json:"phylum" yaml:"phylum"`
}

// StratumMetrics holds the phyletic spread and depth of one
// (lineage, supergroup) stratum.
type StratumMetrics struct {
	Lineage    Lineage    `json:"lineage" yaml:"lineage"`
	Supergroup Supergroup `json:"supergroup" yaml:"supergroup"`

	// Spread (S_i) is the number of unique phyla in the stratum.
	Spread int `json:"spread" yaml:"spread"`

	// Depth (D_i) is the average number of sequence copies per species.
	Depth float64 `json:"depth" yaml:"depth"`

	Sequences int `json:"n_seq" yaml:"n_seq"`
	Species   int `json:"n_species" yaml:"n_species"`
}
