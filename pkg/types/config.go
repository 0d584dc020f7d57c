// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pacifastin-atlas/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EntrezConfig holds settings for the fetch stage (NCBI E-utilities).
type EntrezConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestDelay is the delay between consecutive efetch calls
	// (default 350ms, NCBI allows 3 req/s without a key).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// GenBankDir is the directory GenBank records are written to.
	GenBankDir string `json:"genbank_dir" yaml:"genbank_dir"`
}

// ExtractionConfig holds settings for the GenBank CDS extraction stage.
type ExtractionConfig struct {
	// GenBankDir is the directory containing .gb/.gbk input files.
	GenBankDir string `json:"genbank_dir" yaml:"genbank_dir"`

	// FastaPath is the output FASTA file for protein translations.
	FastaPath string `json:"fasta_path" yaml:"fasta_path"`

	// MetadataPath is the output CSV file for per-CDS metadata.
	MetadataPath string `json:"metadata_path" yaml:"metadata_path"`
}

// MiningConfig holds settings for the homolog mining stage.
type MiningConfig struct {
	// HMMSearchBin is the hmmsearch binary name or path (default "hmmsearch").
	HMMSearchBin string `json:"hmmsearch_bin" yaml:"hmmsearch_bin"`

	// FoldseekBin is the foldseek binary name or path (default "foldseek").
	FoldseekBin string `json:"foldseek_bin" yaml:"foldseek_bin"`

	// EValueCutoff is the inclusion threshold applied to both searches
	// (default 1e-5).
	EValueCutoff float64 `json:"evalue_cutoff" yaml:"evalue_cutoff"`

	// ProfilePath is the pacifastin HMM profile file.
	ProfilePath string `json:"profile_path" yaml:"profile_path"`

	// TemplateDir is the directory of reference pacifastin structures
	// foldseek searches against.
	TemplateDir string `json:"template_dir" yaml:"template_dir"`

	// ResultsDir is the directory mining outputs are written to.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`
}

// FoldConfig holds settings for the structure acquisition stage.
type FoldConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIURL is the ESMFold folding endpoint.
	APIURL string `json:"api_url" yaml:"api_url"`

	// MaxRetries is the number of attempts per sequence (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestDelay is the delay between consecutive submissions (default 2s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// ModelsDir is the directory PDB models are written to.
	ModelsDir string `json:"models_dir" yaml:"models_dir"`

	// FailedLog is the file failed sequence IDs are appended to.
	FailedLog string `json:"failed_log" yaml:"failed_log"`

	// ArchiveURL is the base URL of the precomputed AlphaFold model archive
	// (Zenodo record).
	ArchiveURL string `json:"archive_url" yaml:"archive_url"`
}

// GLMConfig holds settings for the linker cleavage regression stage.
type GLMConfig struct {
	// MaxIterations caps the IRLS fitting loop (default 25).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// Tolerance is the convergence threshold on the coefficient update
	// (default 1e-8).
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

// LandscapeConfig holds settings for the structural landscape stage.
type LandscapeConfig struct {
	// Components is the embedding dimensionality (default 2).
	Components int `json:"components" yaml:"components"`
}

// AtlasConfig holds settings for the atlas index stage.
type AtlasConfig struct {
	// AtlasDir is the directory holding the atlas database and exports.
	AtlasDir string `json:"atlas_dir" yaml:"atlas_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// OutputFormat selects the report output format.
type OutputFormat string

const (
	OutputMarkdown OutputFormat = "markdown"
	OutputLaTeX    OutputFormat = "latex"
)

// ReportConfig holds settings for the report stage.
type ReportConfig struct {
	// OutputDir is the directory generated reports are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Format selects the output format: markdown or latex.
	Format OutputFormat `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Entrez     EntrezConfig     `json:"entrez" yaml:"entrez"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Mining     MiningConfig     `json:"mining" yaml:"mining"`
	Fold       FoldConfig       `json:"fold" yaml:"fold"`
	GLM        GLMConfig        `json:"glm" yaml:"glm"`
	Landscape  LandscapeConfig  `json:"landscape" yaml:"landscape"`
	Atlas      AtlasConfig      `json:"atlas" yaml:"atlas"`
	Report     ReportConfig     `json:"report" yaml:"report"`
}
