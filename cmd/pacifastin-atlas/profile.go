package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pacifastin-atlas/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Compute domain-profile statistics for classified sets",
	Long: `Profile computes per-position residue statistics over classified domain
sets: logo matrices (probabilities plus information content) from a
cysteine-anchored alignment, and the P1 reactive-site specificity
landscape across phyla.`,
}

var profileLogoCmd = &cobra.Command{
	Use:   "logo [msa.csv]",
	Short: "Compute the sequence logo matrix from an anchored alignment",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileLogo,
}

var profileP1Cmd = &cobra.Command{
	Use:   "p1 [observations.csv]",
	Short: "Compute the P1 reactive-site specificity landscape",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileP1,
}

func init() {
	profileLogoCmd.Flags().String("output", "results/profiles/logo_matrix.csv", "output logo matrix CSV")
	profileP1Cmd.Flags().String("output", "results/profiles/p1_landscape.csv", "output landscape CSV")

	profileCmd.AddCommand(profileLogoCmd)
	profileCmd.AddCommand(profileP1Cmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileLogo(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")

	aligned, err := profile.ReadMSACSV(args[0])
	if err != nil {
		return err
	}
	profiles, err := profile.LogoMatrix(aligned)
	if err != nil {
		return err
	}

	if err := ensureOutputDirs(outputPath); err != nil {
		return err
	}
	if err := profile.WriteLogoCSV(outputPath, profiles); err != nil {
		return err
	}
	fmt.Printf("%d alignment positions written to %s\n", len(profiles), outputPath)
	return nil
}

func runProfileP1(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")

	observations, err := profile.ReadP1CSV(args[0])
	if err != nil {
		return err
	}
	cells := profile.P1Landscape(observations)

	if err := ensureOutputDirs(outputPath); err != nil {
		return err
	}
	if err := profile.WriteP1CSV(outputPath, cells); err != nil {
		return err
	}
	fmt.Printf("%d landscape cells written to %s\n", len(cells), outputPath)
	return nil
}
