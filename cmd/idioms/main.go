// Package main implements the idioms tool, which rebuilds the merged idiom
// list used by the guessing bot from the polyphone mapping and the plain
// idiom list.
//
// Usage:
//
//	idioms                  # merge with paths from idioms.yaml or the defaults
//	idioms merge --skip-blank --output data/all_idioms.txt
//	idioms verify           # fail if data/all_idioms.txt is stale or malformed
//	idioms config init      # write idioms.yaml with the effective settings
package main

import (
	"fmt"
	"os"

	"handlebot/internal/config"
	"handlebot/internal/idioms"
	"handlebot/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath     string
	verbose        bool
	polyphonesPath string
	idiomsPath     string
	outputPath     string
	skipBlank      bool
	force          bool

	cfg    *config.Config
	logger *zap.Logger
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "idioms",
		Short: "Merge the polyphone mapping and idiom list into one sorted list",
		Long: `Builds the canonical idiom list: every idiom that has a polyphone
reading plus every line of the idiom list, deduplicated, sorted by code
point and written one per line without a trailing newline.

Run without a subcommand to merge.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: runMerge,
	}

	mergeCmd := &cobra.Command{
		Use:   "merge",
		Short: "Write the merged idiom list, overwriting the output",
		Args:  cobra.NoArgs,
		RunE:  runMerge,
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the output matches the current sources",
		Long: `Recomputes the merge in memory and compares it with the output file.
Reports duplicate, unsorted or unexpected lines and a trailing newline.
Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the idioms config file",
	}

	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Long: `Writes the defaults, with any environment and flag overrides applied,
to the file named by --config. An existing file is kept unless --force is set.

Example:
  idioms config init --output build/all_idioms.txt --skip-blank`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}
	configInitCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "idioms.yaml", "Config file (missing file means defaults)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&polyphonesPath, "polyphones", "", "Polyphone mapping, JSON or YAML (overrides config)")
	flags.StringVar(&idiomsPath, "idioms", "", "Idiom list, one per line (overrides config)")
	flags.StringVarP(&outputPath, "output", "o", "", "Merged idiom list destination (overrides config)")
	flags.BoolVar(&skipBlank, "skip-blank", false, "Drop entries that are empty after trimming")

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(configCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config, applies explicit flags on top and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("polyphones") {
		cfg.Paths.Polyphones = polyphonesPath
	}
	if flags.Changed("idioms") {
		cfg.Paths.Idioms = idiomsPath
	}
	if flags.Changed("output") {
		cfg.Paths.Output = outputPath
	}
	if flags.Changed("skip-blank") {
		cfg.Merge.SkipBlank = skipBlank
	}

	logger, err = logging.New(cfg.Logging, verbose)
	if err != nil {
		return err
	}
	logger.Debug("Configuration loaded",
		zap.String("config", configPath),
		zap.String("polyphones", cfg.Paths.Polyphones),
		zap.String("idioms", cfg.Paths.Idioms),
		zap.String("output", cfg.Paths.Output),
		zap.Bool("skip_blank", cfg.Merge.SkipBlank))
	return nil
}

// runMerge rewrites the output from the two sources.
func runMerge(cmd *cobra.Command, args []string) error {
	res, err := idioms.NewMerger(logger).Merge(cfg.Options())
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d idioms to %s (%d from mapping, %d from list, %d duplicates)\n",
		res.Merged, cfg.Paths.Output, res.MappingKeys, res.ListEntries, res.Duplicates)
	return nil
}

// runVerify checks the output against the sources without writing.
func runVerify(cmd *cobra.Command, args []string) error {
	res, err := idioms.NewMerger(logger).Check(cfg.Options())
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date (%d idioms)\n", cfg.Paths.Output, res.Merged)
	return nil
}

// runConfigInit saves the effective configuration to the config path.
func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := cfg.Init(configPath, force); err != nil {
		return err
	}
	logger.Debug("Config file written", zap.String("path", configPath), zap.Bool("overwrite", force))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", configPath)
	return nil
}
