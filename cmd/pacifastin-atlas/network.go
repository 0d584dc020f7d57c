package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/network"
)

var networkCmd = &cobra.Command{
	Use:   "network [occurrences.csv]",
	Short: "Build the domain co-occurrence network",
	Long: `Network constructs the weighted co-occurrence graph of Pfam domains
found alongside Pacifastin cores, compares the hub-versus-solitary
connectivity of each lineage, and exports the edge list plus a GEXF file
for Gephi.`,
	Args: cobra.ExactArgs(1),
	RunE: runNetwork,
}

func init() {
	networkCmd.Flags().String("edges-out", "results/network/edges.csv", "output edge list CSV")
	networkCmd.Flags().String("gexf-out", "results/network/network.gexf", "output GEXF file")

	rootCmd.AddCommand(networkCmd)
}

func runNetwork(cmd *cobra.Command, args []string) error {
	edgesPath, _ := cmd.Flags().GetString("edges-out")
	gexfPath, _ := cmd.Flags().GetString("gexf-out")

	occurrences, err := network.ReadOccurrencesCSV(args[0])
	if err != nil {
		return err
	}

	metrics, err := network.CompareLineages(occurrences)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		fmt.Printf("%-20s %-9s degree=%d total_weight=%d\n", m.Lineage, m.Profile, m.Degree, m.TotalWeight)
	}

	n, err := network.Build(occurrences)
	if err != nil {
		return err
	}

	if err := ensureOutputDirs(edgesPath, gexfPath); err != nil {
		return err
	}
	if err := network.WriteEdgeListCSV(edgesPath, n); err != nil {
		return err
	}
	return network.WriteGEXF(gexfPath, n)
}
