package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/landscape"
)

var landscapeCmd = &cobra.Command{
	Use:   "landscape [rmsd_matrix.csv]",
	Short: "Embed the RMSD matrix into conformational space",
	Long: `Landscape performs classical multidimensional scaling of the all-vs-all
backbone RMSD matrix, writing two-dimensional coordinates per structure
and a structural dispersion index per lineage (mean distance to the
lineage centroid).`,
	Args: cobra.ExactArgs(1),
	RunE: runLandscape,
}

func init() {
	landscapeCmd.Flags().String("metadata", "data/sequences/landscape_metadata.csv", "metadata CSV with Sequence_ID and Lineage columns")
	landscapeCmd.Flags().Int("components", 0, "embedding dimensionality (default 2)")
	landscapeCmd.Flags().String("coords-out", "results/landscape/coordinates.csv", "output coordinates CSV")
	landscapeCmd.Flags().String("dispersion-out", "results/landscape/dispersion.csv", "output dispersion summary CSV")

	rootCmd.AddCommand(landscapeCmd)
}

func runLandscape(cmd *cobra.Command, args []string) error {
	metadataPath, _ := cmd.Flags().GetString("metadata")
	components, _ := cmd.Flags().GetInt("components")
	coordsPath, _ := cmd.Flags().GetString("coords-out")
	dispersionPath, _ := cmd.Flags().GetString("dispersion-out")

	ids, d, err := landscape.ReadRMSDMatrixCSV(args[0])
	if err != nil {
		return err
	}
	lineages, err := landscape.ReadMetadataCSV(metadataPath)
	if err != nil {
		return err
	}

	points, err := landscape.Embed(ids, d, lineages, components)
	if err != nil {
		return err
	}
	indices := landscape.Dispersion(points)

	for _, di := range indices {
		fmt.Printf("Dispersion Index (%s): %.2f over %d structures\n", di.Lineage, di.Index, di.N)
	}

	if err := ensureOutputDirs(coordsPath, dispersionPath); err != nil {
		return err
	}
	if err := landscape.WriteCoordinatesCSV(coordsPath, points); err != nil {
		return err
	}
	return landscape.WriteDispersionCSV(dispersionPath, indices)
}
