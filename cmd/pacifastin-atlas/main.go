// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pacifastin-atlas CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pacifastin-atlas/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// ensureOutputDirs creates the parent directory of each output path.
func ensureOutputDirs(paths ...string) error {
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("creating output directory for %s: %w", p, err)
		}
	}
	return nil
}

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the pacifastin-atlas CLI.
var rootCmd = &cobra.Command{
	Use:   "pacifastin-atlas",
	Short: "Comparative analysis pipeline for the pacifastin protein family",
	Long: `pacifastin-atlas mines, classifies, and analyzes pacifastin-like protease
inhibitor domains across the tree of life. The pipeline runs as a series of
subcommands over a file-based workspace: fetch GenBank records, extract
coding sequences, mine homologs by sequence and structure, acquire 3D
models, classify loop topologies, and compute the evolutionary and
structural statistics of the family.

Each stage reads the outputs of earlier stages from the workspace, so
stages can be re-run independently and interrupted runs resume.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pacifastin-atlas.yaml or ~/.config/pacifastin-atlas/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pacifastin-atlas")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pacifastin-atlas"))
		}
	}

	viper.SetEnvPrefix("PACIFASTIN_ATLAS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
