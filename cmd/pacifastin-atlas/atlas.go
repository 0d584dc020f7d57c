package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/atlas"
	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

var atlasCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Manage the homolog atlas index (store, retrieve, export)",
	Long: `Atlas manages a local SQLite index over the homolog dataset, joined
from the classification, detection, and metadata tables. Use subcommands
to build the index, query it, or export it.`,
}

// --- store subcommand ---

var atlasStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest pipeline results into the atlas index",
	Long: `Store joins the classification, detection, and metadata CSVs into one
homolog record per sequence and indexes them in SQLite with FTS5 search
over organism, phylum, and lineage. Unchanged source files are skipped
on subsequent runs.`,
	RunE: runAtlasStore,
}

func runAtlasStore(cmd *cobra.Command, args []string) error {
	store, err := atlas.NewStore(atlasConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	src := sourcesFromFlags(cmd)
	summary, err := store.Ingest(context.Background(), src, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d source file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var atlasRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the atlas with full-text search and filters",
	Long: `Retrieve searches the atlas using FTS5 full-text search over organism,
phylum, and lineage, structured filters, or a combination of both.`,
	RunE: runAtlasRetrieve,
}

func runAtlasRetrieve(cmd *cobra.Command, args []string) error {
	store, err := atlas.NewStore(atlasConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --lineage, --method, or --phylum")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []types.Homolog, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-16s  %-28s  %-14s  %-18s  %s\n",
		"Rank", "ID", "Organism", "Phylum", "Lineage", "Method")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, h := range results {
		organism := h.Organism
		if len(organism) > 28 {
			organism = organism[:25] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-16s  %-28s  %-14s  %-18s  %s\n",
			i+1, h.ID, organism, h.Phylum, h.Lineage, h.Method)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- taxa subcommand ---

var atlasTaxaCmd = &cobra.Command{
	Use:   "taxa",
	Short: "Show the per-phylum detection method breakdown",
	RunE:  runAtlasTaxa,
}

func runAtlasTaxa(cmd *cobra.Command, args []string) error {
	store, err := atlas.NewStore(atlasConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	taxa, err := store.Taxa(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("%-16s %14s %14s %8s %8s\n", "Phylum", "Sequence-only", "Structure-only", "Common", "Total")
	for _, t := range taxa {
		fmt.Printf("%-16s %14d %14d %8d %8d\n", t.Phylum, t.SequenceOnly, t.StructureOnly, t.Common, t.Total())
	}
	return nil
}

// --- export subcommand ---

var atlasExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the atlas to YAML or JSON",
	Long: `Export writes the full atlas (or a filtered subset) to export.yaml or
export.json in the atlas directory. Supports the same filter flags as
retrieve for partial exports.`,
	RunE: runAtlasExport,
}

func runAtlasExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg := atlasConfig(cmd)
	store, err := atlas.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.yaml\n", cfg.AtlasDir)
	case "json":
		if err := store.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/export.json\n", cfg.AtlasDir)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func atlasConfig(cmd *cobra.Command) types.AtlasConfig {
	atlasDir, _ := cmd.Flags().GetString("atlas-dir")
	if atlasDir == "" {
		atlasDir = "atlas/index"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.AtlasConfig{
		AtlasDir:   atlasDir,
		MaxResults: maxResults,
	}
}

func sourcesFromFlags(cmd *cobra.Command) atlas.Sources {
	classification, _ := cmd.Flags().GetString("classification")
	detections, _ := cmd.Flags().GetString("detections")
	metadata, _ := cmd.Flags().GetString("metadata")

	return atlas.Sources{
		ClassificationCSV: classification,
		DetectionCSV:      detections,
		MetadataCSV:       metadata,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) atlas.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	lineage, _ := cmd.Flags().GetString("lineage")
	method, _ := cmd.Flags().GetString("method")
	phylum, _ := cmd.Flags().GetString("phylum")
	limit, _ := cmd.Flags().GetInt("limit")

	return atlas.QueryOptions{
		Query:      queryText,
		Lineage:    types.Lineage(lineage),
		Method:     types.DetectionMethod(method),
		Phylum:     phylum,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	atlasCmd.PersistentFlags().String("atlas-dir", "atlas/index", "directory for the atlas database and exports")
	atlasCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Store flags.
	atlasStoreCmd.Flags().String("classification", "results/classification/classification.csv", "classification CSV")
	atlasStoreCmd.Flags().String("detections", "results/mining/detection_table.csv", "detection table CSV")
	atlasStoreCmd.Flags().String("metadata", "data/sequences/metadata.csv", "CDS metadata CSV")

	// Retrieve flags.
	atlasRetrieveCmd.Flags().String("query", "", "full-text search query")
	atlasRetrieveCmd.Flags().String("lineage", "", "filter by lineage: Compact-loop, Extended-loop, Unclassified/Other")
	atlasRetrieveCmd.Flags().String("method", "", "filter by detection method: Sequence-only, Structure-only, Common")
	atlasRetrieveCmd.Flags().String("phylum", "", "filter by phylum")
	atlasRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	atlasRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	atlasExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	atlasExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	atlasExportCmd.Flags().String("lineage", "", "filter by lineage for partial export")
	atlasExportCmd.Flags().String("method", "", "filter by detection method for partial export")
	atlasExportCmd.Flags().String("phylum", "", "filter by phylum for partial export")
	atlasExportCmd.Flags().Int("limit", 0, "maximum homologs to export (0 = all)")

	// Wire subcommands.
	atlasCmd.AddCommand(atlasStoreCmd)
	atlasCmd.AddCommand(atlasRetrieveCmd)
	atlasCmd.AddCommand(atlasTaxaCmd)
	atlasCmd.AddCommand(atlasExportCmd)

	rootCmd.AddCommand(atlasCmd)
}
